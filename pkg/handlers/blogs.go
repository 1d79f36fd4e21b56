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
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/tracking"
)

// GetBlogs выводит список опубликованных статей, свежие первыми.
// Параметр ?category=<имя> фильтрует по категории без учёта регистра.
func GetBlogs(w http.ResponseWriter, r *http.Request) {

	category := r.URL.Query().Get("category")

	// список без фильтра отдаём из кэша, если он там есть
	if category == "" {
		if jsonData, err := cache.GetCache("blogs:published"); err == nil {
			var blogs []models.Blog
			if err = json.Unmarshal(jsonData, &blogs); err == nil {
				writeJSON(w, http.StatusOK, blogs)
				return
			}
			log.Printf("Битые данные в кэше: blogs:published. Удаляем ключ.")
			if err := cache.DelCache("blogs:published"); err != nil {
				log.Printf("Ошибка удаления битых данных из кэша: %v", err)
			}
		}
	}

	query := db.DB.Db.
		Preload("Category").
		Where("status = ?", models.StatusPublished).
		Order("published_at DESC")

	// фильтр по категории: соединяем с categories и сравниваем имена в нижнем регистре
	if category != "" {
		query = query.
			Joins("JOIN categories ON categories.id = blogs.category_id").
			Where("LOWER(categories.name) = LOWER(?)", category)
	}

	var blogs []models.Blog
	if err := query.Find(&blogs).Error; err != nil {
		log.Printf("Ошибка при получении статей: %v", err)
		http.Error(w, "Ошибка при получении статей", http.StatusInternalServerError)
		return
	}

	if category == "" {
		if err := cache.SetCache("blogs:published", blogs, cache.GetTTL()); err != nil {
			log.Printf("Ошибка кэширования списка статей: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, blogs)
}

// GetCategories выводит все категории блога
func GetCategories(w http.ResponseWriter, r *http.Request) {

	var categories []models.Category
	if err := db.DB.Db.Order("id ASC").Find(&categories).Error; err != nil {
		log.Printf("Ошибка при получении категорий: %v", err)
		http.Error(w, "Ошибка при получении категорий", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// blogResponse - статья вместе со связанными поисками под ней
type blogResponse struct {
	models.Blog
	RelatedSearches []models.RelatedSearch `json:"related_searches"`
}

// GetBlogBySlug выдаёт опубликованную статью по слагу.
// Черновик или неизвестный слаг - 404, чтобы не раскрывать черновики.
func GetBlogBySlug(w http.ResponseWriter, r *http.Request) {

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		http.Error(w, "Параметр slug обязателен", http.StatusBadRequest)
		return
	}

	var blog models.Blog
	found := false

	// проверяем есть ли статья в кэше
	cacheKey := cache.BlogKey(slug)
	if jsonData, err := cache.GetCache(cacheKey); err == nil {
		if err = json.Unmarshal(jsonData, &blog); err != nil {
			log.Printf("Битые данные в кэше: %s. Удаляем ключ.", cacheKey)
			if err := cache.DelCache(cacheKey); err != nil {
				log.Printf("Ошибка удаления битых данных из кэша %s: %v", cacheKey, err)
			}
		} else {
			found = true
		}
	}

	// если в кэше не нашлось - идём в базу
	if !found {
		result := db.DB.Db.
			Preload("Category").
			Where("slug = ? AND status = ?", slug, models.StatusPublished).
			First(&blog)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				http.Error(w, "Статья не найдена", http.StatusNotFound)
				return
			}
			log.Printf("Ошибка при получении статьи: %v", result.Error)
			http.Error(w, "Ошибка при получении статьи", http.StatusInternalServerError)
			return
		}

		if err := cache.SetCache(cacheKey, blog, cache.GetTTL()); err != nil {
			log.Printf("Ошибка кэширования статьи %s: %v", slug, err)
		}
	}

	// связанные поиски под статьёй, в заданном админкой порядке
	var searches []models.RelatedSearch
	if err := db.DB.Db.
		Where("blog_id = ?", blog.ID).
		Order("search_order ASC").
		Find(&searches).Error; err != nil {
		log.Printf("Ошибка при получении связанных поисков: %v", err)
		http.Error(w, "Ошибка при получении связанных поисков", http.StatusInternalServerError)
		return
	}

	// фиксируем просмотр, сбой трекинга не ломает ответ
	sessionID := tracking.SessionID(w, r)
	tracking.Record(r, sessionID, models.EventBlogView,
		models.BlogViewPayload{Title: blog.Title}, &blog.ID, nil)

	writeJSON(w, http.StatusOK, blogResponse{Blog: blog, RelatedSearches: searches})
}
