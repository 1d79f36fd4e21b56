package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/cache"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/shutdown"
)

// guardShutdown отвечает 503 на мутации, когда сервер уже останавливается
func guardShutdown(w http.ResponseWriter) bool {

	if shutdown.IsShuttingDown() {
		http.Error(w, "Сервер находится в процессе остановки. Операция невозможна.", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// AdminGetBlogs выводит все статьи для админки, включая черновики
func AdminGetBlogs(w http.ResponseWriter, r *http.Request) {

	var blogs []models.Blog
	if err := db.DB.Db.Preload("Category").Order("created_at DESC").Find(&blogs).Error; err != nil {
		log.Printf("Ошибка при получении статей: %v", err)
		http.Error(w, "Ошибка при получении статей", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, blogs)
}

// AdminPostBlog создаёт статью. Публикация сразу при создании
// проставляет published_at.
func AdminPostBlog(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	blog := new(models.Blog)
	if !readJSON(w, r, blog) {
		return
	}
	if err := validateStruct(blog); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if blog.Status == "" {
		blog.Status = models.StatusDraft
	}
	if blog.Status == models.StatusPublished && blog.PublishedAt == nil {
		now := time.Now()
		blog.PublishedAt = &now
	}

	if err := db.DB.Db.Create(blog).Error; err != nil {
		log.Printf("Ошибка при создании статьи: %v", err)
		http.Error(w, "Ошибка при создании статьи", http.StatusInternalServerError)
		return
	}

	if err := cache.DelCache(cache.BlogKey(blog.Slug), "blogs:published"); err != nil {
		log.Printf("Ошибка инвалидации кэша статьи %s: %v", blog.Slug, err)
	}

	writeJSON(w, http.StatusCreated, blog)
}

// AdminPutBlog обновляет статью по id. Первый переход в published
// проставляет published_at, обратный переход в draft его не трогает.
func AdminPutBlog(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	id := chi.URLParam(r, "id")

	var existing models.Blog
	result := db.DB.Db.First(&existing, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Статья не найдена", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении статьи: %v", result.Error)
		http.Error(w, "Ошибка при получении статьи", http.StatusInternalServerError)
		return
	}

	blog := new(models.Blog)
	if !readJSON(w, r, blog) {
		return
	}
	if err := validateStruct(blog); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	blog.ID = existing.ID
	blog.CreatedAt = existing.CreatedAt
	blog.PublishedAt = existing.PublishedAt
	if blog.Status == models.StatusPublished && blog.PublishedAt == nil {
		now := time.Now()
		blog.PublishedAt = &now
	}

	if err := db.DB.Db.Save(blog).Error; err != nil {
		log.Printf("Ошибка при обновлении статьи: %v", err)
		http.Error(w, "Ошибка при обновлении статьи", http.StatusInternalServerError)
		return
	}

	// слаг мог поменяться - чистим оба ключа
	if err := cache.DelCache(cache.BlogKey(existing.Slug), cache.BlogKey(blog.Slug), "blogs:published"); err != nil {
		log.Printf("Ошибка инвалидации кэша статьи %s: %v", blog.Slug, err)
	}

	writeJSON(w, http.StatusOK, blog)
}

// AdminDeleteBlog удаляет статью по id
func AdminDeleteBlog(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	id := chi.URLParam(r, "id")

	var blog models.Blog
	result := db.DB.Db.First(&blog, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Статья не найдена", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении статьи: %v", result.Error)
		http.Error(w, "Ошибка при получении статьи", http.StatusInternalServerError)
		return
	}

	if err := db.DB.Db.Delete(&blog).Error; err != nil {
		log.Printf("Ошибка при удалении статьи: %v", err)
		http.Error(w, "Ошибка при удалении статьи", http.StatusInternalServerError)
		return
	}

	if err := cache.DelCache(cache.BlogKey(blog.Slug), "blogs:published"); err != nil {
		log.Printf("Ошибка инвалидации кэша статьи %s: %v", blog.Slug, err)
	}

	w.WriteHeader(http.StatusNoContent)
}
