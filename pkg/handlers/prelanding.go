package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/cache"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/funnel"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/shutdown"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/tracking"
)

// GetPreLanding выдаёт конфигурацию пре-лендинга для связанного поиска.
// Счётчик обратного отсчёта приводится к допустимому диапазону на выдаче.
func GetPreLanding(w http.ResponseWriter, r *http.Request) {

	searchID := chi.URLParam(r, "search_id")
	if searchID == "" {
		http.Error(w, "Параметр search_id обязателен", http.StatusBadRequest)
		return
	}

	var config models.PreLandingConfig
	found := false

	// проверяем есть ли конфигурация в кэше
	cacheKey := cache.PreLandingKey(searchID)
	if jsonData, err := cache.GetCache(cacheKey); err == nil {
		if err = json.Unmarshal(jsonData, &config); err != nil {
			log.Printf("Битые данные в кэше: %s. Удаляем ключ.", cacheKey)
			if err := cache.DelCache(cacheKey); err != nil {
				log.Printf("Ошибка удаления битых данных из кэша %s: %v", cacheKey, err)
			}
		} else {
			found = true
		}
	}

	if !found {
		result := db.DB.Db.First(&config, "related_search_id = ?", searchID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				http.Error(w, "Конфигурация пре-лендинга не найдена", http.StatusNotFound)
				return
			}
			log.Printf("Ошибка при получении конфигурации пре-лендинга: %v", result.Error)
			http.Error(w, "Ошибка при получении конфигурации", http.StatusInternalServerError)
			return
		}

		if err := cache.SetCache(cacheKey, config, cache.GetTTL()); err != nil {
			log.Printf("Ошибка кэширования конфигурации %s: %v", cacheKey, err)
		}
	}

	config.CountdownSeconds = funnel.ClampCountdown(config.CountdownSeconds)

	writeJSON(w, http.StatusOK, config)
}

// emailResponse - ответ на захват email: сколько секунд ждать и куда уходить
type emailResponse struct {
	CountdownSeconds int    `json:"countdown_seconds"`
	Redirect         string `json:"redirect"`
}

// PostEmail принимает email с пре-лендинга. Пишет ровно одну строку в журнал
// подписок, затем ровно одно событие трекинга. Сбой трекинга не ломает ответ.
func PostEmail(w http.ResponseWriter, r *http.Request) {

	// проверяем не останавливается ли сервер
	if shutdown.IsShuttingDown() {
		http.Error(w, "Сервер находится в процессе остановки. Операция невозможна.", http.StatusServiceUnavailable)
		return
	}

	searchID := chi.URLParam(r, "search_id")
	if searchID == "" {
		http.Error(w, "Параметр search_id обязателен", http.StatusBadRequest)
		return
	}

	var req struct {
		Email     string `json:"email" validate:"required,email"`
		TargetURL string `json:"targetUrl" validate:"required"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := validateStruct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sessionID := tracking.SessionID(w, r)

	submission := models.EmailSubmission{
		Email:           req.Email,
		RelatedSearchID: &searchID,
		SessionID:       sessionID,
		IPAddress:       tracking.ClientIP(r),
		Country:         "unknown",
		Source:          tracking.Source(r),
	}

	if err := db.DB.Db.Create(&submission).Error; err != nil {
		log.Printf("Ошибка при сохранении email: %v", err)
		http.Error(w, "Ошибка при сохранении email", http.StatusInternalServerError)
		return
	}

	tracking.Record(r, sessionID, models.EventEmailSubmission,
		models.EmailPayload{Email: req.Email}, nil, &searchID)

	// счётчик берём из конфигурации, если она настроена
	countdown := funnel.CountdownDefault
	var config models.PreLandingConfig
	if err := db.DB.Db.First(&config, "related_search_id = ?", searchID).Error; err == nil {
		countdown = funnel.ClampCountdown(config.CountdownSeconds)
	}

	writeJSON(w, http.StatusOK, emailResponse{
		CountdownSeconds: countdown,
		Redirect:         req.TargetURL,
	})
}

// Redirect уводит посетителя на внешний целевой адрес из ?targetUrl=.
// Принимаются только абсолютные http/https адреса.
func Redirect(w http.ResponseWriter, r *http.Request) {

	target, err := funnel.ValidateTarget(r.URL.Query().Get("targetUrl"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}
