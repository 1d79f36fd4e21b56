package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/cache"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/funnel"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/tracking"
)

// searchResponse - страница синтетической выдачи по связанному поиску
type searchResponse struct {
	Search     models.RelatedSearch `json:"search"`
	WR         int                  `json:"wr"`
	WebResults []models.WebResult   `json:"web_results"`
}

// redirectResponse - куда вести посетителя дальше по воронке
type redirectResponse struct {
	Redirect string `json:"redirect"`
	Fallback bool   `json:"fallback"`
}

// wrParam достаёт номер страницы выдачи из ?wr= (по умолчанию 1)
func wrParam(r *http.Request) int {

	wr := 1
	if wrStr := r.URL.Query().Get("wr"); wrStr != "" {
		if n, err := strconv.Atoi(wrStr); err == nil && n > 0 {
			wr = n
		}
	}
	return wr
}

// findSearch получает связанный поиск по id и сам отвечает 404/500 при неудаче
func findSearch(w http.ResponseWriter, r *http.Request) (*models.RelatedSearch, bool) {

	searchID := chi.URLParam(r, "search_id")
	if searchID == "" {
		http.Error(w, "Параметр search_id обязателен", http.StatusBadRequest)
		return nil, false
	}

	var search models.RelatedSearch
	result := db.DB.Db.First(&search, "id = ?", searchID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Поиск не найден", http.StatusNotFound)
			return nil, false
		}
		log.Printf("Ошибка при получении поиска: %v", result.Error)
		http.Error(w, "Ошибка при получении поиска", http.StatusInternalServerError)
		return nil, false
	}

	return &search, true
}

// GetSearch выдаёт страницу поисковой выдачи: текст поиска и веб-результаты
// с wr_parameter, равным ?wr= (по умолчанию 1). Спонсорские результаты первыми.
func GetSearch(w http.ResponseWriter, r *http.Request) {

	search, ok := findSearch(w, r)
	if !ok {
		return
	}

	wr := wrParam(r)

	var webResults []models.WebResult
	loaded := false

	// проверяем есть ли выдача в кэше
	cacheKey := cache.SearchKey(search.ID, wr)
	if jsonData, err := cache.GetCache(cacheKey); err == nil {
		if err = json.Unmarshal(jsonData, &webResults); err != nil {
			log.Printf("Битые данные в кэше: %s. Удаляем ключ.", cacheKey)
			if err := cache.DelCache(cacheKey); err != nil {
				log.Printf("Ошибка удаления битых данных из кэша %s: %v", cacheKey, err)
			}
		} else {
			loaded = true
		}
	}

	if !loaded {
		err := db.DB.Db.
			Where("related_search_id = ? AND wr_parameter = ?", search.ID, wr).
			Order("is_sponsored DESC").
			Order("display_order ASC").
			Find(&webResults).Error
		if err != nil {
			log.Printf("Ошибка при получении веб-результатов: %v", err)
			http.Error(w, "Ошибка при получении веб-результатов", http.StatusInternalServerError)
			return
		}

		if err := cache.SetCache(cacheKey, webResults, cache.GetTTL()); err != nil {
			log.Printf("Ошибка кэширования выдачи %s: %v", cacheKey, err)
		}
	}

	sessionID := tracking.SessionID(w, r)
	tracking.Record(r, sessionID, models.EventSearchPageView,
		models.SearchPayload{SearchText: search.SearchText}, nil, &search.ID)

	writeJSON(w, http.StatusOK, searchResponse{
		Search:     *search,
		WR:         wr,
		WebResults: webResults,
	})
}

// PostRelatedClick фиксирует переход со статьи на страницу поиска
// (клик по связанному поиску в блоке под статьёй)
func PostRelatedClick(w http.ResponseWriter, r *http.Request) {

	search, ok := findSearch(w, r)
	if !ok {
		return
	}

	// необязательное тело: со страницы какой статьи пришли
	var req struct {
		BlogID string `json:"blog_id"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if !readJSON(w, r, &req) {
			return
		}
	}

	var blogID *string
	if req.BlogID != "" {
		blogID = &req.BlogID
	}

	sessionID := tracking.SessionID(w, r)
	tracking.Record(r, sessionID, models.EventRelatedSearchClick,
		models.SearchPayload{SearchText: search.SearchText}, blogID, &search.ID)

	w.WriteHeader(http.StatusNoContent)
}

// PostVisit фиксирует клик по кнопке Visit Now и говорит, куда вести посетителя:
// на пре-лендинг, если он настроен, иначе на внешний поиск по тексту запроса
func PostVisit(w http.ResponseWriter, r *http.Request) {

	search, ok := findSearch(w, r)
	if !ok {
		return
	}

	// необязательное тело: целевой адрес и номер страницы выдачи
	var req struct {
		TargetURL string `json:"target_url"`
		WR        int    `json:"wr"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if !readJSON(w, r, &req) {
			return
		}
	}
	if req.WR <= 0 {
		req.WR = 1
	}

	sessionID := tracking.SessionID(w, r)
	tracking.Record(r, sessionID, models.EventVisitNowClick,
		models.SearchPayload{SearchText: search.SearchText}, nil, &search.ID)

	// без настроенного пре-лендинга отправляем на внешний поиск
	var config models.PreLandingConfig
	err := db.DB.Db.First(&config, "related_search_id = ?", search.ID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Ошибка при получении конфигурации пре-лендинга: %v", err)
			http.Error(w, "Ошибка при получении конфигурации", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, redirectResponse{
			Redirect: funnel.FallbackSearchURL(search.SearchText),
			Fallback: true,
		})
		return
	}

	target := req.TargetURL
	if target == "" {
		target = funnel.FallbackSearchURL(search.SearchText)
	}

	writeJSON(w, http.StatusOK, redirectResponse{
		Redirect: funnel.PreLandingPath(search.ID, target, req.WR),
	})
}

// PostResultClick фиксирует клик по веб-результату и возвращает путь
// на пре-лендинг с зашитым целевым адресом результата
func PostResultClick(w http.ResponseWriter, r *http.Request) {

	search, ok := findSearch(w, r)
	if !ok {
		return
	}

	var req struct {
		WebResultID string `json:"web_result_id" validate:"required"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := validateStruct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var webResult models.WebResult
	result := db.DB.Db.First(&webResult, "id = ? AND related_search_id = ?", req.WebResultID, search.ID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Веб-результат не найден", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении веб-результата: %v", result.Error)
		http.Error(w, "Ошибка при получении веб-результата", http.StatusInternalServerError)
		return
	}

	sessionID := tracking.SessionID(w, r)
	tracking.Record(r, sessionID, models.EventWebResultClick,
		models.WebResultClickPayload{
			SearchText:  search.SearchText,
			Title:       webResult.Title,
			URL:         webResult.URL,
			IsSponsored: webResult.IsSponsored,
		}, nil, &search.ID)

	var config models.PreLandingConfig
	err := db.DB.Db.First(&config, "related_search_id = ?", search.ID).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Ошибка при получении конфигурации пре-лендинга: %v", err)
			http.Error(w, "Ошибка при получении конфигурации", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, redirectResponse{
			Redirect: funnel.FallbackSearchURL(search.SearchText),
			Fallback: true,
		})
		return
	}

	writeJSON(w, http.StatusOK, redirectResponse{
		Redirect: funnel.PreLandingPath(search.ID, webResult.URL, webResult.WRParameter),
	})
}
