package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/metrics"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
	"github.com/google/uuid"
)

// SessionHeader - заголовок, в котором клиент держит идентификатор сессии вкладки
const SessionHeader = "X-Session-ID"

// unknownIP пишется в журнал, когда адрес посетителя определить не удалось
const unknownIP = "unknown"

// регулярные выражения классификации устройства (сначала планшеты, потом мобильные)
var (
	tabletRe = regexp.MustCompile(`(?i)tablet|ipad|playbook|silk`)
	mobileRe = regexp.MustCompile(`Mobile|Android|iP(hone|od)|IEMobile|BlackBerry|Kindle|Silk-Accelerated|(hpw|web)OS|Opera M(obi|ini)`)
)

var (
	ipLookupURL     string        // адрес внешнего сервиса определения IP
	ipLookupTimeout time.Duration // таймаут обращения к нему
)

// Configure задаёт параметры внешнего определения IP
func Configure(cfg *configuration.ConfTracking) {

	ipLookupURL = cfg.IPLookupURL
	ipLookupTimeout = cfg.IPLookupTimeout
}

// SessionID возвращает идентификатор сессии из заголовка запроса
// или выдаёт новый и проставляет его в ответ, чтобы вкладка могла его хранить
func SessionID(w http.ResponseWriter, r *http.Request) string {

	sessionID := r.Header.Get(SessionHeader)
	if sessionID == "" {
		// формат сохранён из исходного фронта: session_<мс>_<короткий суффикс>
		sessionID = fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:9])
	}

	w.Header().Set(SessionHeader, sessionID)

	return sessionID
}

// DeviceType классифицирует user-agent как desktop, tablet или mobile
func DeviceType(userAgent string) string {

	// go-шный regexp не умеет negative lookahead из исходного выражения,
	// поэтому случай "android без mobi" проверяем отдельно
	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "android") && !strings.Contains(ua, "mobi") {
		return "tablet"
	}
	if tabletRe.MatchString(userAgent) {
		return "tablet"
	}
	if mobileRe.MatchString(userAgent) {
		return "mobile"
	}

	return "desktop"
}

// Source выводит источник трафика: параметр source, затем реферер, иначе direct
func Source(r *http.Request) string {

	if src := r.URL.Query().Get("source"); src != "" {
		return src
	}
	if ref := r.Header.Get("Referer"); ref != "" {
		return ref
	}

	return "direct"
}

// ClientIP определяет адрес посетителя по заголовкам прокси и RemoteAddr,
// в крайнем случае спрашивает внешний сервис; при неудаче пишем "unknown"
func ClientIP(r *http.Request) string {

	// первый адрес из X-Forwarded-For
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}

	// последняя попытка - внешний сервис
	if ip, err := LookupPublicIP(r.Context()); err == nil {
		return ip
	}

	return unknownIP
}

// LookupPublicIP спрашивает внешний сервис "какой у меня IP" (JSON {"ip": "..."})
func LookupPublicIP(ctx context.Context) (string, error) {

	if ipLookupURL == "" {
		return "", fmt.Errorf("сервис определения IP не настроен")
	}

	timeout := ipLookupTimeout
	if timeout == 0 {
		timeout = 2 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ipLookupURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.IP == "" {
		return "", fmt.Errorf("пустой ответ сервиса определения IP")
	}

	return body.IP, nil
}

// Record добавляет событие в журнал трекинга.
// Ошибки записи только логируются: трекинг никогда не должен
// блокировать действие пользователя, к которому он прикреплён.
func Record(r *http.Request, sessionID, eventType string, payload interface{}, blogID, relatedSearchID *string) {

	event := models.TrackingEvent{
		SessionID:       sessionID,
		EventType:       eventType,
		EventData:       models.MarshalPayload(payload),
		IPAddress:       ClientIP(r),
		UserAgent:       r.UserAgent(),
		DeviceType:      DeviceType(r.UserAgent()),
		Country:         "unknown", // геосервиса нет, как и в исходном проекте
		Source:          Source(r),
		BlogID:          blogID,
		RelatedSearchID: relatedSearchID,
	}

	if err := db.DB.Db.Create(&event).Error; err != nil {
		log.Printf("Ошибка записи события трекинга %s: %v", eventType, err)
		return
	}

	metrics.TrackedEvents.WithLabelValues(eventType).Inc()
}
