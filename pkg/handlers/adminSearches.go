package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/cache"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
)

// AdminGetSearches выводит связанные поиски, опционально только одной статьи
func AdminGetSearches(w http.ResponseWriter, r *http.Request) {

	query := db.DB.Db.Order("search_order ASC")
	if blogID := r.URL.Query().Get("blog_id"); blogID != "" {
		query = query.Where("blog_id = ?", blogID)
	}

	var searches []models.RelatedSearch
	if err := query.Find(&searches).Error; err != nil {
		log.Printf("Ошибка при получении поисков: %v", err)
		http.Error(w, "Ошибка при получении поисков", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, searches)
}

// AdminPostSearch создаёт связанный поиск
func AdminPostSearch(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	search := new(models.RelatedSearch)
	if !readJSON(w, r, search) {
		return
	}
	if err := validateStruct(search); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if search.WRParameter <= 0 {
		search.WRParameter = 1
	}

	if err := db.DB.Db.Create(search).Error; err != nil {
		log.Printf("Ошибка при создании поиска: %v", err)
		http.Error(w, "Ошибка при создании поиска", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, search)
}

// AdminPutSearch обновляет связанный поиск по id
func AdminPutSearch(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	id := chi.URLParam(r, "id")

	var existing models.RelatedSearch
	result := db.DB.Db.First(&existing, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Поиск не найден", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении поиска: %v", result.Error)
		http.Error(w, "Ошибка при получении поиска", http.StatusInternalServerError)
		return
	}

	search := new(models.RelatedSearch)
	if !readJSON(w, r, search) {
		return
	}
	if err := validateStruct(search); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	search.ID = existing.ID
	search.CreatedAt = existing.CreatedAt
	if search.WRParameter <= 0 {
		search.WRParameter = 1
	}

	if err := db.DB.Db.Save(search).Error; err != nil {
		log.Printf("Ошибка при обновлении поиска: %v", err)
		http.Error(w, "Ошибка при обновлении поиска", http.StatusInternalServerError)
		return
	}

	invalidateSearchCache(search.ID)

	writeJSON(w, http.StatusOK, search)
}

// AdminDeleteSearch удаляет связанный поиск по id
func AdminDeleteSearch(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	id := chi.URLParam(r, "id")

	result := db.DB.Db.Delete(&models.RelatedSearch{}, "id = ?", id)
	if result.Error != nil {
		log.Printf("Ошибка при удалении поиска: %v", result.Error)
		http.Error(w, "Ошибка при удалении поиска", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Поиск не найден", http.StatusNotFound)
		return
	}

	invalidateSearchCache(id)

	w.WriteHeader(http.StatusNoContent)
}

// invalidateSearchCache чистит кэш выдачи поиска по всем разумным номерам страниц
func invalidateSearchCache(searchID string) {

	keys := make([]string, 0, 10)
	for wr := 1; wr <= 10; wr++ {
		keys = append(keys, cache.SearchKey(searchID, wr))
	}
	keys = append(keys, cache.PreLandingKey(searchID))

	if err := cache.DelCache(keys...); err != nil {
		log.Printf("Ошибка инвалидации кэша поиска %s: %v", searchID, err)
	}
}
