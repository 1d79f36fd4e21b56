package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/cache"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/tracking"
)

// setupTestDB поднимает две базы sqlite в памяти вместо постгреса,
// чтобы тесты обработчиков бегали без сервера и докера.
// Кэш в тестах не инициализируется - обработчики идут мимо него в базу.
func setupTestDB(t *testing.T) {

	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())

	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(
		&models.Category{},
		&models.Blog{},
		&models.RelatedSearch{},
		&models.WebResult{},
		&models.PreLandingConfig{},
		&models.EmailSubmission{},
		&models.TrackingEvent{},
	))
	db.DB = db.Dbinstance{Db: gdb}

	mdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s_mingle?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, mdb.AutoMigrate(
		&models.MingleRelatedSearch{},
		&models.MingleWebResult{},
		&models.PrelanderConfig{},
		&models.LandingPage{},
		&models.MingleAnalytics{},
		&models.MingleAnalyticsEvent{},
		&models.MingleClickEvent{},
	))
	db.Mingle = db.Dbinstance{Db: mdb}

	cache.Rdb = nil
	Setup(configuration.Read())
	tracking.Configure(&configuration.ConfTracking{})
}

// newTestRouter собирает роутер с теми же путями, что и боевой сервер.
// Админские роуты здесь без JWT - авторизация проверяется отдельно.
func newTestRouter() *chi.Mux {

	r := chi.NewRouter()

	r.Get("/api/blogs", GetBlogs)
	r.Get("/api/blogs/{slug}", GetBlogBySlug)
	r.Get("/api/categories", GetCategories)
	r.Get("/api/search/{search_id}", GetSearch)
	r.Post("/api/search/{search_id}/related-click", PostRelatedClick)
	r.Post("/api/search/{search_id}/visit", PostVisit)
	r.Post("/api/search/{search_id}/click", PostResultClick)
	r.Get("/api/prelanding/{search_id}", GetPreLanding)
	r.Post("/api/prelanding/{search_id}/email", PostEmail)
	r.Get("/go", Redirect)

	r.Post("/api/admin/login", PostLogin)
	r.Get("/api/admin/blogs", AdminGetBlogs)
	r.Post("/api/admin/blogs", AdminPostBlog)
	r.Put("/api/admin/blogs/{id}", AdminPutBlog)
	r.Delete("/api/admin/blogs/{id}", AdminDeleteBlog)
	r.Post("/api/admin/categories", AdminPostCategory)
	r.Put("/api/admin/categories/{id}", AdminPutCategory)
	r.Delete("/api/admin/categories/{id}", AdminDeleteCategory)
	r.Get("/api/admin/searches", AdminGetSearches)
	r.Post("/api/admin/searches", AdminPostSearch)
	r.Put("/api/admin/searches/{id}", AdminPutSearch)
	r.Delete("/api/admin/searches/{id}", AdminDeleteSearch)
	r.Get("/api/admin/results", AdminGetResults)
	r.Post("/api/admin/results", AdminPostResult)
	r.Put("/api/admin/results/{id}", AdminPutResult)
	r.Delete("/api/admin/results/{id}", AdminDeleteResult)
	r.Get("/api/admin/prelanding/{search_id}", AdminGetPreLanding)
	r.Put("/api/admin/prelanding/{search_id}", AdminPutPreLanding)
	r.Get("/api/admin/emails", AdminGetEmails)
	r.Get("/api/admin/analytics", AdminGetAnalytics)

	r.Get("/api/admin/mingle/searches", MingleGetSearches)
	r.Post("/api/admin/mingle/searches", MinglePostSearch)
	r.Get("/api/admin/mingle/prelanding/{key}", MingleGetPreLanding)
	r.Put("/api/admin/mingle/prelanding/{key}", MinglePutPreLanding)
	r.Get("/api/admin/mingle/pages", MingleGetPages)
	r.Post("/api/admin/mingle/pages", MinglePostPage)
	r.Put("/api/admin/mingle/pages/{id}", MinglePutPage)
	r.Delete("/api/admin/mingle/pages/{id}", MingleDeletePage)
	r.Get("/api/admin/mingle/analytics", MingleGetAnalytics)

	return r
}

// doJSON выполняет запрос с JSON-телом через роутер и возвращает рекордер
func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {

	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

// seedFunnel создаёт статью со связанным поиском и двумя веб-результатами
func seedFunnel(t *testing.T) (models.Blog, models.RelatedSearch, []models.WebResult) {

	t.Helper()

	now := time.Now()
	blog := models.Blog{
		Title:       "Лучшие кроссовки",
		Slug:        "best-shoes",
		Author:      "admin",
		Content:     "Текст статьи.\nВторой абзац.",
		Status:      models.StatusPublished,
		PublishedAt: &now,
	}
	require.NoError(t, db.DB.Db.Create(&blog).Error)

	search := models.RelatedSearch{
		BlogID:      &blog.ID,
		SearchText:  "best running shoes",
		SearchOrder: 0,
		WRParameter: 1,
	}
	require.NoError(t, db.DB.Db.Create(&search).Error)

	results := []models.WebResult{
		{
			RelatedSearchID: search.ID,
			Title:           "Органический результат",
			URL:             "https://organic.example.com",
			Description:     "обычный",
			IsSponsored:     false,
			WRParameter:     1,
			DisplayOrder:    0,
		},
		{
			RelatedSearchID: search.ID,
			Title:           "Спонсорский результат",
			URL:             "https://sponsored.example.com",
			Description:     "проплаченный",
			IsSponsored:     true,
			WRParameter:     1,
			DisplayOrder:    5,
		},
	}
	for i := range results {
		require.NoError(t, db.DB.Db.Create(&results[i]).Error)
	}

	return blog, search, results
}

// TestGetBlogBySlug проверяет выдачу опубликованной статьи и скрытие черновиков
func TestGetBlogBySlug(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	blog, search, _ := seedFunnel(t)

	draft := models.Blog{Title: "Черновик", Slug: "draft-post", Author: "admin", Content: "..."}
	require.NoError(t, db.DB.Db.Create(&draft).Error)

	// опубликованная статья отдаётся вместе со связанными поисками
	w := doJSON(router, http.MethodGet, "/api/blogs/best-shoes", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp blogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, blog.ID, resp.ID)
	require.Len(t, resp.RelatedSearches, 1)
	assert.Equal(t, search.ID, resp.RelatedSearches[0].ID)

	// идентификатор сессии выдан в заголовке
	assert.True(t, strings.HasPrefix(w.Header().Get(tracking.SessionHeader), "session_"))

	// черновик и несуществующий слаг наружу не видны
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/blogs/draft-post", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/blogs/no-such-post", nil).Code)

	// просмотр попал в журнал событий
	var events []models.TrackingEvent
	require.NoError(t, db.DB.Db.Where("event_type = ?", models.EventBlogView).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, blog.ID, *events[0].BlogID)
}

// TestGetBlogsFilter проверяет список статей и фильтр по категории
func TestGetBlogsFilter(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	category := models.Category{Name: "Shoes", CodeRange: "100-199"}
	require.NoError(t, db.DB.Db.Create(&category).Error)

	now := time.Now()
	published := models.Blog{
		Title: "В категории", Slug: "in-category", Author: "admin", Content: "...",
		CategoryID: &category.ID, Status: models.StatusPublished, PublishedAt: &now,
	}
	require.NoError(t, db.DB.Db.Create(&published).Error)

	other := models.Blog{
		Title: "Без категории", Slug: "no-category", Author: "admin", Content: "...",
		Status: models.StatusPublished, PublishedAt: &now,
	}
	require.NoError(t, db.DB.Db.Create(&other).Error)

	draft := models.Blog{Title: "Черновик", Slug: "hidden", Author: "admin", Content: "..."}
	require.NoError(t, db.DB.Db.Create(&draft).Error)

	// без фильтра - обе опубликованные
	w := doJSON(router, http.MethodGet, "/api/blogs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var blogs []models.Blog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blogs))
	assert.Len(t, blogs, 2)

	// фильтр по имени категории не зависит от регистра
	w = doJSON(router, http.MethodGet, "/api/blogs?category=shoes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blogs))
	require.Len(t, blogs, 1)
	assert.Equal(t, "in-category", blogs[0].Slug)
}

// TestGetSearch проверяет выдачу: спонсорские первыми, фильтр по wr, событие просмотра
func TestGetSearch(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	_, search, _ := seedFunnel(t)

	// результат со второй страницы выдачи не должен попасть в первую
	second := models.WebResult{
		RelatedSearchID: search.ID,
		Title:           "Вторая страница",
		URL:             "https://second.example.com",
		Description:     "...",
		WRParameter:     2,
	}
	require.NoError(t, db.DB.Db.Create(&second).Error)

	w := doJSON(router, http.MethodGet, "/api/search/"+search.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, search.ID, resp.Search.ID)
	assert.Equal(t, 1, resp.WR)
	require.Len(t, resp.WebResults, 2)
	// спонсорский выше органического несмотря на больший display_order
	assert.True(t, resp.WebResults[0].IsSponsored)
	assert.False(t, resp.WebResults[1].IsSponsored)

	// вторая страница
	w = doJSON(router, http.MethodGet, "/api/search/"+search.ID+"?wr=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.WebResults, 1)
	assert.Equal(t, "Вторая страница", resp.WebResults[0].Title)

	// неизвестный поиск
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/search/00000000-0000-0000-0000-000000000000", nil).Code)

	// оба просмотра выдачи попали в журнал
	var count int64
	require.NoError(t, db.DB.Db.Model(&models.TrackingEvent{}).
		Where("event_type = ?", models.EventSearchPageView).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

// TestPostRelatedClick проверяет фиксацию перехода со статьи на поиск
func TestPostRelatedClick(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	blog, search, _ := seedFunnel(t)

	w := doJSON(router, http.MethodPost, "/api/search/"+search.ID+"/related-click",
		map[string]string{"blog_id": blog.ID})
	assert.Equal(t, http.StatusNoContent, w.Code)

	var events []models.TrackingEvent
	require.NoError(t, db.DB.Db.Where("event_type = ?", models.EventRelatedSearchClick).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, blog.ID, *events[0].BlogID)
	assert.Equal(t, search.ID, *events[0].RelatedSearchID)
}

// TestPostResultClick проверяет маршрутизацию клика по результату через пре-лендинг
func TestPostResultClick(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	_, search, results := seedFunnel(t)

	// без конфигурации пре-лендинга клик уводит на внешний поиск
	w := doJSON(router, http.MethodPost, "/api/search/"+search.ID+"/click",
		map[string]string{"web_result_id": results[1].ID})
	require.Equal(t, http.StatusOK, w.Code)

	var resp redirectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Fallback)
	assert.Contains(t, resp.Redirect, "google.com/search")

	// с конфигурацией - на пре-лендинг с зашитым целевым адресом
	config := models.PreLandingConfig{RelatedSearchID: search.ID, Headline: "Подождите"}
	require.NoError(t, db.DB.Db.Create(&config).Error)

	w = doJSON(router, http.MethodPost, "/api/search/"+search.ID+"/click",
		map[string]string{"web_result_id": results[1].ID})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Fallback)
	assert.True(t, strings.HasPrefix(resp.Redirect, "/prelanding/"+search.ID+"?targetUrl="))
	assert.Contains(t, resp.Redirect, "sponsored.example.com")

	// чужой идентификатор результата
	w = doJSON(router, http.MethodPost, "/api/search/"+search.ID+"/click",
		map[string]string{"web_result_id": "00000000-0000-0000-0000-000000000000"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// клики с нагрузкой попали в журнал
	var events []models.TrackingEvent
	require.NoError(t, db.DB.Db.Where("event_type = ?", models.EventWebResultClick).Find(&events).Error)
	require.Len(t, events, 2)

	var payload models.WebResultClickPayload
	require.NoError(t, json.Unmarshal([]byte(events[0].EventData), &payload))
	assert.Equal(t, "https://sponsored.example.com", payload.URL)
	assert.True(t, payload.IsSponsored)
}

// TestPostVisit проверяет кнопку Visit Now с конфигурацией и без
func TestPostVisit(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	_, search, _ := seedFunnel(t)

	// без конфигурации - внешний поиск по тексту запроса
	w := doJSON(router, http.MethodPost, "/api/search/"+search.ID+"/visit", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp redirectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Fallback)
	assert.Contains(t, resp.Redirect, "best+running+shoes")

	// с конфигурацией - пре-лендинг
	config := models.PreLandingConfig{RelatedSearchID: search.ID}
	require.NoError(t, db.DB.Db.Create(&config).Error)

	w = doJSON(router, http.MethodPost, "/api/search/"+search.ID+"/visit",
		map[string]interface{}{"target_url": "https://offer.example.com", "wr": 2})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Redirect, "/prelanding/"+search.ID))
	assert.Contains(t, resp.Redirect, "wr=2")

	var count int64
	require.NoError(t, db.DB.Db.Model(&models.TrackingEvent{}).
		Where("event_type = ?", models.EventVisitNowClick).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

// TestGetPreLanding проверяет выдачу конфигурации с приведением отсчёта
func TestGetPreLanding(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	_, search, _ := seedFunnel(t)

	// конфигурации нет
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/prelanding/"+search.ID, nil).Code)

	// отсчёт за пределами диапазона приводится на выдаче
	config := models.PreLandingConfig{RelatedSearchID: search.ID, CountdownSeconds: 60}
	require.NoError(t, db.DB.Db.Create(&config).Error)

	w := doJSON(router, http.MethodGet, "/api/prelanding/"+search.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.PreLandingConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 10, got.CountdownSeconds)
}

// TestPostEmail проверяет захват email: ровно одна запись и ровно одно событие
func TestPostEmail(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	_, search, _ := seedFunnel(t)

	config := models.PreLandingConfig{RelatedSearchID: search.ID, CountdownSeconds: 5}
	require.NoError(t, db.DB.Db.Create(&config).Error)

	w := doJSON(router, http.MethodPost, "/api/prelanding/"+search.ID+"/email",
		map[string]string{"email": "visitor@example.com", "targetUrl": "https://offer.example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp emailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.CountdownSeconds)
	assert.Equal(t, "https://offer.example.com", resp.Redirect)

	// ровно одна запись в журнале подписок
	var submissions []models.EmailSubmission
	require.NoError(t, db.DB.Db.Find(&submissions).Error)
	require.Len(t, submissions, 1)
	assert.Equal(t, "visitor@example.com", submissions[0].Email)
	assert.Equal(t, search.ID, *submissions[0].RelatedSearchID)

	// и ровно одно событие
	var count int64
	require.NoError(t, db.DB.Db.Model(&models.TrackingEvent{}).
		Where("event_type = ?", models.EventEmailSubmission).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// кривой email отклоняется без записи
	w = doJSON(router, http.MethodPost, "/api/prelanding/"+search.ID+"/email",
		map[string]string{"email": "not-an-email", "targetUrl": "https://offer.example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.NoError(t, db.DB.Db.Find(&submissions).Error)
	assert.Len(t, submissions, 1)
}

// TestRedirect проверяет финальный редирект на целевой адрес
func TestRedirect(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	w := doJSON(router, http.MethodGet, "/go?targetUrl=https%3A%2F%2Foffer.example.com%2Fland", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://offer.example.com/land", w.Header().Get("Location"))

	// без адреса и с опасной схемой - 400
	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodGet, "/go", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(router, http.MethodGet, "/go?targetUrl=javascript%3Aalert(1)", nil).Code)
}
