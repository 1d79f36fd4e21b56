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

// guardMingle отвечает 503, когда вторая база не поднялась при старте
func guardMingle(w http.ResponseWriter) bool {

	if !db.MingleReady() {
		http.Error(w, "база mingle недоступна", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// MingleGetSearches выводит связанные поиски второго проекта
func MingleGetSearches(w http.ResponseWriter, r *http.Request) {

	if !guardMingle(w) {
		return
	}

	var searches []models.MingleRelatedSearch
	if err := db.Mingle.Db.Order("display_order ASC").Find(&searches).Error; err != nil {
		log.Printf("Ошибка при получении mingle-поисков: %v", err)
		http.Error(w, "Ошибка при получении поисков", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, searches)
}

// MinglePostSearch создаёт связанный поиск второго проекта
func MinglePostSearch(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	search := new(models.MingleRelatedSearch)
	if !readJSON(w, r, search) {
		return
	}
	if err := validateStruct(search); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := db.Mingle.Db.Create(search).Error; err != nil {
		log.Printf("Ошибка при создании mingle-поиска: %v", err)
		http.Error(w, "Ошибка при создании поиска", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, search)
}

// MinglePutSearch обновляет связанный поиск второго проекта по id
func MinglePutSearch(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	id := chi.URLParam(r, "id")

	var existing models.MingleRelatedSearch
	result := db.Mingle.Db.First(&existing, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Поиск не найден", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении mingle-поиска: %v", result.Error)
		http.Error(w, "Ошибка при получении поиска", http.StatusInternalServerError)
		return
	}

	search := new(models.MingleRelatedSearch)
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

	if err := db.Mingle.Db.Save(search).Error; err != nil {
		log.Printf("Ошибка при обновлении mingle-поиска: %v", err)
		http.Error(w, "Ошибка при обновлении поиска", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, search)
}

// MingleDeleteSearch удаляет связанный поиск второго проекта по id
func MingleDeleteSearch(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	id := chi.URLParam(r, "id")

	result := db.Mingle.Db.Delete(&models.MingleRelatedSearch{}, "id = ?", id)
	if result.Error != nil {
		log.Printf("Ошибка при удалении mingle-поиска: %v", result.Error)
		http.Error(w, "Ошибка при удалении поиска", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Поиск не найден", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MingleGetResults выводит веб-результаты второго проекта,
// по страницам и позициям
func MingleGetResults(w http.ResponseWriter, r *http.Request) {

	if !guardMingle(w) {
		return
	}

	query := db.Mingle.Db.Order("page_number ASC").Order("position ASC")
	if page := r.URL.Query().Get("page"); page != "" {
		query = query.Where("page_number = ?", page)
	}

	var results []models.MingleWebResult
	if err := query.Find(&results).Error; err != nil {
		log.Printf("Ошибка при получении mingle-результатов: %v", err)
		http.Error(w, "Ошибка при получении веб-результатов", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// MinglePostResult создаёт веб-результат второго проекта
func MinglePostResult(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	webResult := new(models.MingleWebResult)
	if !readJSON(w, r, webResult) {
		return
	}
	if err := validateStruct(webResult); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if webResult.PageNumber <= 0 {
		webResult.PageNumber = 1
	}

	if err := db.Mingle.Db.Create(webResult).Error; err != nil {
		log.Printf("Ошибка при создании mingle-результата: %v", err)
		http.Error(w, "Ошибка при создании веб-результата", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, webResult)
}

// MinglePutResult обновляет веб-результат второго проекта по id
func MinglePutResult(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	id := chi.URLParam(r, "id")

	var existing models.MingleWebResult
	result := db.Mingle.Db.First(&existing, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Веб-результат не найден", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении mingle-результата: %v", result.Error)
		http.Error(w, "Ошибка при получении веб-результата", http.StatusInternalServerError)
		return
	}

	webResult := new(models.MingleWebResult)
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

	if err := db.Mingle.Db.Save(webResult).Error; err != nil {
		log.Printf("Ошибка при обновлении mingle-результата: %v", err)
		http.Error(w, "Ошибка при обновлении веб-результата", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, webResult)
}

// MingleDeleteResult удаляет веб-результат второго проекта по id
func MingleDeleteResult(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	id := chi.URLParam(r, "id")

	result := db.Mingle.Db.Delete(&models.MingleWebResult{}, "id = ?", id)
	if result.Error != nil {
		log.Printf("Ошибка при удалении mingle-результата: %v", result.Error)
		http.Error(w, "Ошибка при удалении веб-результата", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Веб-результат не найден", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MingleGetPreLanding выдаёт конфигурацию пре-лендинга второго проекта по ключу
func MingleGetPreLanding(w http.ResponseWriter, r *http.Request) {

	if !guardMingle(w) {
		return
	}

	key := chi.URLParam(r, "key")

	var config models.PrelanderConfig
	result := db.Mingle.Db.First(&config, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Конфигурация пре-лендинга не найдена", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении mingle-конфигурации: %v", result.Error)
		http.Error(w, "Ошибка при получении конфигурации", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// MinglePutPreLanding сохраняет конфигурацию пре-лендинга второго проекта.
// Вставка или обновление - по натуральному ключу key.
func MinglePutPreLanding(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	key := chi.URLParam(r, "key")

	config := new(models.PrelanderConfig)
	if !readJSON(w, r, config) {
		return
	}
	config.Key = key
	if err := validateStruct(config); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var existing models.PrelanderConfig
	err := db.Mingle.Db.First(&existing, "key = ?", key).Error
	switch {
	case err == nil:
		config.ID = existing.ID
		config.CreatedAt = existing.CreatedAt
		err = db.Mingle.Db.Save(config).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = db.Mingle.Db.Create(config).Error
	}
	if err != nil {
		log.Printf("Ошибка при сохранении mingle-конфигурации: %v", err)
		http.Error(w, "Ошибка при сохранении конфигурации", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// MingleGetPages выводит лендинги второго проекта
func MingleGetPages(w http.ResponseWriter, r *http.Request) {

	if !guardMingle(w) {
		return
	}

	var pages []models.LandingPage
	if err := db.Mingle.Db.Order("created_at DESC").Find(&pages).Error; err != nil {
		log.Printf("Ошибка при получении лендингов: %v", err)
		http.Error(w, "Ошибка при получении лендингов", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pages)
}

// MinglePostPage создаёт лендинг второго проекта
func MinglePostPage(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	page := new(models.LandingPage)
	if !readJSON(w, r, page) {
		return
	}
	if err := validateStruct(page); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := db.Mingle.Db.Create(page).Error; err != nil {
		log.Printf("Ошибка при создании лендинга: %v", err)
		http.Error(w, "Ошибка при создании лендинга", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, page)
}

// MinglePutPage обновляет лендинг второго проекта по id
func MinglePutPage(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	id := chi.URLParam(r, "id")

	var existing models.LandingPage
	result := db.Mingle.Db.First(&existing, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Лендинг не найден", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении лендинга: %v", result.Error)
		http.Error(w, "Ошибка при получении лендинга", http.StatusInternalServerError)
		return
	}

	page := new(models.LandingPage)
	if !readJSON(w, r, page) {
		return
	}
	if err := validateStruct(page); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page.ID = existing.ID
	page.CreatedAt = existing.CreatedAt

	if err := db.Mingle.Db.Save(page).Error; err != nil {
		log.Printf("Ошибка при обновлении лендинга: %v", err)
		http.Error(w, "Ошибка при обновлении лендинга", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// MingleDeletePage удаляет лендинг второго проекта по id
func MingleDeletePage(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) || !guardMingle(w) {
		return
	}

	id := chi.URLParam(r, "id")

	result := db.Mingle.Db.Delete(&models.LandingPage{}, "id = ?", id)
	if result.Error != nil {
		log.Printf("Ошибка при удалении лендинга: %v", result.Error)
		http.Error(w, "Ошибка при удалении лендинга", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Лендинг не найден", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// mingleAnalyticsResponse - три журнала аналитики второго проекта разом
type mingleAnalyticsResponse struct {
	Sessions []models.MingleAnalytics      `json:"sessions"`
	Events   []models.MingleAnalyticsEvent `json:"events"`
	Clicks   []models.MingleClickEvent     `json:"clicks"`
}

// MingleGetAnalytics выводит журналы аналитики второго проекта,
// свежие первыми, не больше ста записей на журнал
func MingleGetAnalytics(w http.ResponseWriter, r *http.Request) {

	if !guardMingle(w) {
		return
	}

	const limit = 100

	var resp mingleAnalyticsResponse

	if err := db.Mingle.Db.Order("timestamp DESC").Limit(limit).Find(&resp.Sessions).Error; err != nil {
		log.Printf("Ошибка при получении сессий mingle: %v", err)
		http.Error(w, "Ошибка при получении аналитики", http.StatusInternalServerError)
		return
	}
	if err := db.Mingle.Db.Order("created_at DESC").Limit(limit).Find(&resp.Events).Error; err != nil {
		log.Printf("Ошибка при получении событий mingle: %v", err)
		http.Error(w, "Ошибка при получении аналитики", http.StatusInternalServerError)
		return
	}
	if err := db.Mingle.Db.Order("timestamp DESC").Limit(limit).Find(&resp.Clicks).Error; err != nil {
		log.Printf("Ошибка при получении кликов mingle: %v", err)
		http.Error(w, "Ошибка при получении аналитики", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
