package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/handlers"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
)

// setupRouter поднимает роутер боевого сервера поверх sqlite в памяти
func setupRouter(t *testing.T) http.Handler {

	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:srv_%s?mode=memory&cache=shared", name)), &gorm.Config{
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
	db.Mingle = db.Dbinstance{}

	cfg := configuration.Read()
	handlers.Setup(cfg)

	return NewRouter(cfg)
}

// TestRouterPublicRoutes проверяет, что публичные роуты собраны и отвечают
func TestRouterPublicRoutes(t *testing.T) {

	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/blogs", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestRouterAdminAuth проверяет, что админка закрыта токеном, а логин открыт
func TestRouterAdminAuth(t *testing.T) {

	router := setupRouter(t)

	// без токена - 401
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/blogs", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// мусорный токен - тоже 401
	req := httptest.NewRequest(http.MethodGet, "/api/admin/blogs", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// логин открыт и выдаёт рабочий токен
	body, _ := json.Marshal(map[string]string{"login": "admin", "password": "admin"})
	req = httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	req = httptest.NewRequest(http.MethodGet, "/api/admin/blogs", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
