package funnel

import (
	"fmt"
	"net/url"
)

// границы обратного отсчёта пре-лендинга
const (
	CountdownDefault = 3  // значение по умолчанию, если в конфигурации ноль
	CountdownMin     = 2  // нижняя граница
	CountdownMax     = 10 // верхняя граница
)

// ClampCountdown приводит настроенный отсчёт к допустимому диапазону 2..10.
// Ноль означает "не задано" и превращается в значение по умолчанию.
func ClampCountdown(seconds int) int {

	if seconds == 0 {
		return CountdownDefault
	}
	if seconds < CountdownMin {
		return CountdownMin
	}
	if seconds > CountdownMax {
		return CountdownMax
	}

	return seconds
}

// FallbackSearchURL строит запрос к стороннему поисковику,
// когда у связанного поиска нет конфигурации пре-лендинга
func FallbackSearchURL(searchText string) string {

	return "https://www.google.com/search?q=" + url.QueryEscape(searchText)
}

// PreLandingPath строит путь пре-лендинга с целевым URL в строке запроса
func PreLandingPath(searchID, targetURL string, wr int) string {

	return fmt.Sprintf("/prelanding/%s?targetUrl=%s&wr=%d", searchID, url.QueryEscape(targetURL), wr)
}

// ValidateTarget проверяет целевой URL редиректа: только абсолютные http/https
func ValidateTarget(raw string) (string, error) {

	if raw == "" {
		return "", fmt.Errorf("целевой URL не указан")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("некорректный целевой URL: %w", err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("целевой URL должен быть абсолютным http(s)-адресом")
	}

	return u.String(), nil
}
