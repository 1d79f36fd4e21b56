package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/analytics"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
)

// TestPostLogin проверяет вход в админку с верными и неверными данными
func TestPostLogin(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	// учётные данные по умолчанию из конфигурации
	w := doJSON(router, http.MethodPost, "/api/admin/login",
		map[string]string{"login": "admin", "password": "admin"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// неверный пароль
	w = doJSON(router, http.MethodPost, "/api/admin/login",
		map[string]string{"login": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// пустое тело
	w = doJSON(router, http.MethodPost, "/api/admin/login", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestAdminBlogLifecycle проверяет создание, публикацию и удаление статьи
func TestAdminBlogLifecycle(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	// создаём черновик
	w := doJSON(router, http.MethodPost, "/api/admin/blogs", map[string]string{
		"title":   "Новая статья",
		"slug":    "new-post",
		"author":  "admin",
		"content": "Текст.",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var blog models.Blog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blog))
	assert.Equal(t, models.StatusDraft, blog.Status)
	assert.Nil(t, blog.PublishedAt)

	// черновик наружу не виден
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodGet, "/api/blogs/new-post", nil).Code)

	// публикуем - проставляется published_at
	w = doJSON(router, http.MethodPut, "/api/admin/blogs/"+blog.ID, map[string]string{
		"title":   "Новая статья",
		"slug":    "new-post",
		"author":  "admin",
		"content": "Текст.",
		"status":  models.StatusPublished,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blog))
	assert.Equal(t, models.StatusPublished, blog.Status)
	require.NotNil(t, blog.PublishedAt)
	firstPublished := *blog.PublishedAt

	// повторное сохранение published_at не сдвигает
	w = doJSON(router, http.MethodPut, "/api/admin/blogs/"+blog.ID, map[string]string{
		"title":   "Новая статья (правка)",
		"slug":    "new-post",
		"author":  "admin",
		"content": "Текст.",
		"status":  models.StatusPublished,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blog))
	require.NotNil(t, blog.PublishedAt)
	assert.WithinDuration(t, firstPublished, *blog.PublishedAt, time.Second)

	// теперь статья видна публично
	assert.Equal(t, http.StatusOK, doJSON(router, http.MethodGet, "/api/blogs/new-post", nil).Code)

	// удаляем ровно одну строку
	assert.Equal(t, http.StatusNoContent, doJSON(router, http.MethodDelete, "/api/admin/blogs/"+blog.ID, nil).Code)

	var count int64
	require.NoError(t, db.DB.Db.Model(&models.Blog{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// повторное удаление - 404
	assert.Equal(t, http.StatusNotFound, doJSON(router, http.MethodDelete, "/api/admin/blogs/"+blog.ID, nil).Code)
}

// TestAdminBlogValidation проверяет отклонение неполных данных
func TestAdminBlogValidation(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	// без обязательных полей
	w := doJSON(router, http.MethodPost, "/api/admin/blogs", map[string]string{"title": "Без слага"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// с недопустимым статусом
	w = doJSON(router, http.MethodPost, "/api/admin/blogs", map[string]string{
		"title": "Т", "slug": "s", "author": "a", "content": "c", "status": "archived",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestAdminSearchesFilter проверяет CRUD поисков и фильтр по статье
func TestAdminSearchesFilter(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	blog, search, _ := seedFunnel(t)

	// поиск без привязки к статье
	w := doJSON(router, http.MethodPost, "/api/admin/searches", map[string]interface{}{
		"search_text": "другой запрос",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.RelatedSearch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 1, created.WRParameter) // ноль приводится к первой странице

	// без фильтра - оба
	w = doJSON(router, http.MethodGet, "/api/admin/searches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var searches []models.RelatedSearch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &searches))
	assert.Len(t, searches, 2)

	// с фильтром по статье - только её поиск
	w = doJSON(router, http.MethodGet, "/api/admin/searches?blog_id="+blog.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &searches))
	require.Len(t, searches, 1)
	assert.Equal(t, search.ID, searches[0].ID)
}

// TestAdminResultsDisplayOrder проверяет, что новый результат встаёт в конец списка
func TestAdminResultsDisplayOrder(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	_, search, _ := seedFunnel(t) // в сиде уже два результата

	w := doJSON(router, http.MethodPost, "/api/admin/results", map[string]interface{}{
		"related_search_id": search.ID,
		"title":             "Третий",
		"url":               "https://third.example.com",
		"description":       "...",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.WebResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 2, created.DisplayOrder)

	// фильтр по поиску
	w = doJSON(router, http.MethodGet, "/api/admin/results?search_id="+search.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []models.WebResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	assert.Len(t, results, 3)
}

// TestAdminPreLandingUpsert проверяет вставку-или-обновление конфигурации
// и зеркалирование во вторую базу
func TestAdminPreLandingUpsert(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	_, search, _ := seedFunnel(t)

	// первая запись - вставка
	w := doJSON(router, http.MethodPut, "/api/admin/prelanding/"+search.ID, map[string]interface{}{
		"headline":          "Подождите",
		"countdown_seconds": 4,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// вторая - обновление той же строки
	w = doJSON(router, http.MethodPut, "/api/admin/prelanding/"+search.ID, map[string]interface{}{
		"headline":          "Почти готово",
		"countdown_seconds": 6,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.DB.Db.Model(&models.PreLandingConfig{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var config models.PreLandingConfig
	require.NoError(t, db.DB.Db.First(&config, "related_search_id = ?", search.ID).Error)
	assert.Equal(t, "Почти готово", config.Headline)

	// с ?mirror=mingle конфигурация дублируется во вторую базу по ключу поиска
	w = doJSON(router, http.MethodPut, "/api/admin/prelanding/"+search.ID+"?mirror=mingle", map[string]interface{}{
		"headline":          "Зеркало",
		"countdown_seconds": 6,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var mirrored models.PrelanderConfig
	require.NoError(t, db.Mingle.Db.First(&mirrored, "key = ?", search.ID).Error)
	assert.Equal(t, "Зеркало", mirrored.Headline)

	// основная база при этом обновилась независимо
	require.NoError(t, db.DB.Db.First(&config, "related_search_id = ?", search.ID).Error)
	assert.Equal(t, "Зеркало", config.Headline)
}

// TestAdminAnalytics проверяет сводку поверх наката событий через публичные роуты
func TestAdminAnalytics(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	_, search, results := seedFunnel(t)

	// посетитель проходит воронку
	doJSON(router, http.MethodGet, "/api/blogs/best-shoes", nil)
	doJSON(router, http.MethodGet, "/api/search/"+search.ID, nil)
	doJSON(router, http.MethodPost, "/api/search/"+search.ID+"/click",
		map[string]string{"web_result_id": results[1].ID})
	doJSON(router, http.MethodPost, "/api/prelanding/"+search.ID+"/email",
		map[string]string{"email": "visitor@example.com", "targetUrl": "https://offer.example.com"})

	w := doJSON(router, http.MethodGet, "/api/admin/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary analytics.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))

	assert.Equal(t, 4, summary.TotalPageViews) // blog_view, search_page_view, web_result_click, email_submission
	assert.Equal(t, 1, summary.BlogViews)
	assert.Equal(t, 1, summary.WebResultClicks)
	assert.Equal(t, 1, summary.TotalClicks)
	assert.Equal(t, 1, summary.Emails.Total)
	require.Len(t, summary.TopResults, 1)
	assert.Equal(t, "Спонсорский результат", summary.TopResults[0].Title)
	assert.Equal(t, 1, summary.TopResults[0].SponsoredClick)
}

// TestAdminEmails проверяет журнал подписок, свежие первыми
func TestAdminEmails(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	now := time.Now()
	old := models.EmailSubmission{Email: "old@example.com", CreatedAt: now.Add(-time.Hour)}
	fresh := models.EmailSubmission{Email: "fresh@example.com", CreatedAt: now}
	require.NoError(t, db.DB.Db.Create(&old).Error)
	require.NoError(t, db.DB.Db.Create(&fresh).Error)

	w := doJSON(router, http.MethodGet, "/api/admin/emails", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var submissions []models.EmailSubmission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submissions))
	require.Len(t, submissions, 2)
	assert.Equal(t, "fresh@example.com", submissions[0].Email)
}

// TestMingleCRUD проверяет операции над второй базой
func TestMingleCRUD(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	// создаём mingle-поиск
	w := doJSON(router, http.MethodPost, "/api/admin/mingle/searches", map[string]interface{}{
		"search_text":     "mingle query",
		"web_result_page": 1,
		"is_active":       true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(router, http.MethodGet, "/api/admin/mingle/searches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var searches []models.MingleRelatedSearch
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &searches))
	assert.Len(t, searches, 1)

	// upsert конфигурации по натуральному ключу
	w = doJSON(router, http.MethodPut, "/api/admin/mingle/prelanding/promo-key",
		map[string]interface{}{"headline": "Первая версия"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodPut, "/api/admin/mingle/prelanding/promo-key",
		map[string]interface{}{"headline": "Вторая версия"})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Mingle.Db.Model(&models.PrelanderConfig{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	w = doJSON(router, http.MethodGet, "/api/admin/mingle/prelanding/promo-key", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var config models.PrelanderConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &config))
	assert.Equal(t, "Вторая версия", config.Headline)

	// журналы аналитики отдаются свежими первыми
	require.NoError(t, db.Mingle.Db.Create(&models.MingleClickEvent{
		SessionID: "s1", ResultTitle: "Оффер", ResultURL: "https://a.example.com",
		Page: 1, Position: 1, Timestamp: time.Now(),
	}).Error)

	w = doJSON(router, http.MethodGet, "/api/admin/mingle/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var analyticsResp mingleAnalyticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analyticsResp))
	assert.Len(t, analyticsResp.Clicks, 1)
	assert.Empty(t, analyticsResp.Sessions)
}

// TestMinglePageLifecycle проверяет создание, правку и удаление лендинга второго проекта
func TestMinglePageLifecycle(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	w := doJSON(router, http.MethodPost, "/api/admin/mingle/pages", map[string]string{
		"title":       "Черновик лендинга",
		"description": "первый вариант",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var page models.LandingPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.NotEmpty(t, page.ID)

	// правка сохраняет id и дату создания
	w = doJSON(router, http.MethodPut, "/api/admin/mingle/pages/"+page.ID, map[string]string{
		"title":       "Лендинг v2",
		"description": "поправленный вариант",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.LandingPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, page.ID, updated.ID)
	assert.Equal(t, "Лендинг v2", updated.Title)
	assert.WithinDuration(t, page.CreatedAt, updated.CreatedAt, time.Second)

	w = doJSON(router, http.MethodGet, "/api/admin/mingle/pages", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pages []models.LandingPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pages))
	require.Len(t, pages, 1)
	assert.Equal(t, "Лендинг v2", pages[0].Title)

	// правка несуществующего лендинга
	w = doJSON(router, http.MethodPut, "/api/admin/mingle/pages/missing", map[string]string{
		"title": "некуда",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, http.StatusNoContent,
		doJSON(router, http.MethodDelete, "/api/admin/mingle/pages/"+page.ID, nil).Code)

	var count int64
	require.NoError(t, db.Mingle.Db.Model(&models.LandingPage{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

// TestAdminCategoryRename проверяет, что после переименования категории
// публичная выдача сразу отдаёт новое имя
func TestAdminCategoryRename(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	category := models.Category{Name: "Shoes", CodeRange: "100-199"}
	require.NoError(t, db.DB.Db.Create(&category).Error)

	now := time.Now()
	blog := models.Blog{
		Title: "В категории", Slug: "in-category", Author: "admin", Content: "...",
		CategoryID: &category.ID, Status: models.StatusPublished, PublishedAt: &now,
	}
	require.NoError(t, db.DB.Db.Create(&blog).Error)

	w := doJSON(router, http.MethodPut, fmt.Sprintf("/api/admin/categories/%d", category.ID), map[string]string{
		"name":       "Sneakers",
		"code_range": "100-199",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// фильтр по старому имени пуст, по новому - находит статью
	var blogs []models.Blog
	w = doJSON(router, http.MethodGet, "/api/blogs?category=shoes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blogs))
	assert.Empty(t, blogs)

	w = doJSON(router, http.MethodGet, "/api/blogs?category=sneakers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blogs))
	require.Len(t, blogs, 1)

	// страница статьи несёт уже новое имя категории
	w = doJSON(router, http.MethodGet, "/api/blogs/in-category", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp blogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Category)
	assert.Equal(t, "Sneakers", resp.Category.Name)
}

// TestMingleUnavailable проверяет ответ 503, когда вторая база не поднялась
func TestMingleUnavailable(t *testing.T) {

	setupTestDB(t)
	router := newTestRouter()

	db.Mingle = db.Dbinstance{}

	assert.Equal(t, http.StatusServiceUnavailable,
		doJSON(router, http.MethodGet, "/api/admin/mingle/searches", nil).Code)
}
