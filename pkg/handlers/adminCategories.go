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

// invalidateCategoryCache сбрасывает список статей и кэш статей категории:
// закэшированные статьи несут вложенную категорию
func invalidateCategoryCache(categoryID string) {

	keys := []string{"blogs:published"}

	var slugs []string
	if err := db.DB.Db.Model(&models.Blog{}).Where("category_id = ?", categoryID).Pluck("slug", &slugs).Error; err != nil {
		log.Printf("Ошибка выборки статей категории %s: %v", categoryID, err)
	}
	for _, slug := range slugs {
		keys = append(keys, cache.BlogKey(slug))
	}

	if err := cache.DelCache(keys...); err != nil {
		log.Printf("Ошибка инвалидации кэша категории %s: %v", categoryID, err)
	}
}

// AdminPostCategory создаёт категорию блога
func AdminPostCategory(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	category := new(models.Category)
	if !readJSON(w, r, category) {
		return
	}
	if err := validateStruct(category); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := db.DB.Db.Create(category).Error; err != nil {
		log.Printf("Ошибка при создании категории: %v", err)
		http.Error(w, "Ошибка при создании категории", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

// AdminPutCategory обновляет категорию по id
func AdminPutCategory(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	id := chi.URLParam(r, "id")

	var existing models.Category
	result := db.DB.Db.First(&existing, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Категория не найдена", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении категории: %v", result.Error)
		http.Error(w, "Ошибка при получении категории", http.StatusInternalServerError)
		return
	}

	category := new(models.Category)
	if !readJSON(w, r, category) {
		return
	}
	if err := validateStruct(category); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	category.ID = existing.ID
	category.CreatedAt = existing.CreatedAt

	if err := db.DB.Db.Save(category).Error; err != nil {
		log.Printf("Ошибка при обновлении категории: %v", err)
		http.Error(w, "Ошибка при обновлении категории", http.StatusInternalServerError)
		return
	}

	invalidateCategoryCache(id)

	writeJSON(w, http.StatusOK, category)
}

// AdminDeleteCategory удаляет категорию по id
func AdminDeleteCategory(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	id := chi.URLParam(r, "id")

	result := db.DB.Db.Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		log.Printf("Ошибка при удалении категории: %v", result.Error)
		http.Error(w, "Ошибка при удалении категории", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Категория не найдена", http.StatusNotFound)
		return
	}

	invalidateCategoryCache(id)

	w.WriteHeader(http.StatusNoContent)
}
