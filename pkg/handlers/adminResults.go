package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
)

// AdminGetResults выводит веб-результаты, опционально только одного поиска
func AdminGetResults(w http.ResponseWriter, r *http.Request) {

	query := db.DB.Db.Order("is_sponsored DESC").Order("display_order ASC")
	if searchID := r.URL.Query().Get("search_id"); searchID != "" {
		query = query.Where("related_search_id = ?", searchID)
	}

	var results []models.WebResult
	if err := query.Find(&results).Error; err != nil {
		log.Printf("Ошибка при получении веб-результатов: %v", err)
		http.Error(w, "Ошибка при получении веб-результатов", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// AdminPostResult создаёт веб-результат. Если порядок показа не задан,
// новый результат встаёт в конец списка своего поиска.
func AdminPostResult(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	webResult := new(models.WebResult)
	if !readJSON(w, r, webResult) {
		return
	}
	if err := validateStruct(webResult); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if webResult.WRParameter <= 0 {
		webResult.WRParameter = 1
	}

	if webResult.DisplayOrder == 0 {
		var count int64
		if err := db.DB.Db.Model(&models.WebResult{}).
			Where("related_search_id = ?", webResult.RelatedSearchID).
			Count(&count).Error; err != nil {
			log.Printf("Ошибка при подсчёте веб-результатов: %v", err)
			http.Error(w, "Ошибка при создании веб-результата", http.StatusInternalServerError)
			return
		}
		webResult.DisplayOrder = int(count)
	}

	if err := db.DB.Db.Create(webResult).Error; err != nil {
		log.Printf("Ошибка при создании веб-результата: %v", err)
		http.Error(w, "Ошибка при создании веб-результата", http.StatusInternalServerError)
		return
	}

	invalidateSearchCache(webResult.RelatedSearchID)

	writeJSON(w, http.StatusCreated, webResult)
}

// AdminPutResult обновляет веб-результат по id
func AdminPutResult(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	id := chi.URLParam(r, "id")

	var existing models.WebResult
	result := db.DB.Db.First(&existing, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Веб-результат не найден", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении веб-результата: %v", result.Error)
		http.Error(w, "Ошибка при получении веб-результата", http.StatusInternalServerError)
		return
	}

	webResult := new(models.WebResult)
	if !readJSON(w, r, webResult) {
		return
	}
	if err := validateStruct(webResult); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	webResult.ID = existing.ID
	webResult.CreatedAt = existing.CreatedAt
	if webResult.WRParameter <= 0 {
		webResult.WRParameter = 1
	}

	if err := db.DB.Db.Save(webResult).Error; err != nil {
		log.Printf("Ошибка при обновлении веб-результата: %v", err)
		http.Error(w, "Ошибка при обновлении веб-результата", http.StatusInternalServerError)
		return
	}

	invalidateSearchCache(existing.RelatedSearchID)
	if webResult.RelatedSearchID != existing.RelatedSearchID {
		invalidateSearchCache(webResult.RelatedSearchID)
	}

	writeJSON(w, http.StatusOK, webResult)
}

// AdminDeleteResult удаляет веб-результат по id
func AdminDeleteResult(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	id := chi.URLParam(r, "id")

	var webResult models.WebResult
	result := db.DB.Db.First(&webResult, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Веб-результат не найден", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении веб-результата: %v", result.Error)
		http.Error(w, "Ошибка при получении веб-результата", http.StatusInternalServerError)
		return
	}

	if err := db.DB.Db.Delete(&webResult).Error; err != nil {
		log.Printf("Ошибка при удалении веб-результата: %v", err)
		http.Error(w, "Ошибка при удалении веб-результата", http.StatusInternalServerError)
		return
	}

	invalidateSearchCache(webResult.RelatedSearchID)

	w.WriteHeader(http.StatusNoContent)
}
