package models

import "encoding/json"

// Типизированные полезные нагрузки событий.
// Каждому event_type соответствует фиксированный набор полей,
// чтобы аналитика не разбирала произвольные map[string]any.

// BlogViewPayload - нагрузка события blog_view
type BlogViewPayload struct {
	Title string `json:"title"`
}

// SearchPayload - нагрузка событий related_search_click, search_page_view и visit_now_click
type SearchPayload struct {
	SearchText string `json:"search_text"`
}

// WebResultClickPayload - нагрузка события web_result_click
type WebResultClickPayload struct {
	SearchText  string `json:"search_text"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	IsSponsored bool   `json:"is_sponsored"`
}

// EmailPayload - нагрузка события email_submission
type EmailPayload struct {
	Email string `json:"email"`
}

// MarshalPayload сериализует нагрузку события в JSONB
func MarshalPayload(payload interface{}) JSONB {

	if payload == nil {
		return JSONB("{}")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return JSONB("{}")
	}

	return JSONB(data)
}
