package handlers

import (
	"log"
	"net/http"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/analytics"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
)

// AdminGetEmails выводит журнал захваченных email, свежие первыми
func AdminGetEmails(w http.ResponseWriter, r *http.Request) {

	var submissions []models.EmailSubmission
	if err := db.DB.Db.Order("created_at DESC").Find(&submissions).Error; err != nil {
		log.Printf("Ошибка при получении журнала email: %v", err)
		http.Error(w, "Ошибка при получении журнала email", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, submissions)
}

// AdminGetAnalytics считает сводку по всему журналу событий.
// Пагинации нет - сводка всегда по полной истории.
func AdminGetAnalytics(w http.ResponseWriter, r *http.Request) {

	var events []models.TrackingEvent
	if err := db.DB.Db.Find(&events).Error; err != nil {
		log.Printf("Ошибка при получении событий трекинга: %v", err)
		http.Error(w, "Ошибка при получении событий", http.StatusInternalServerError)
		return
	}

	var submissions []models.EmailSubmission
	if err := db.DB.Db.Find(&submissions).Error; err != nil {
		log.Printf("Ошибка при получении журнала email: %v", err)
		http.Error(w, "Ошибка при получении журнала email", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, analytics.Build(events, submissions))
}
