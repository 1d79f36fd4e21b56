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

// AdminGetPreLanding выдаёт конфигурацию пре-лендинга поиска как она сохранена,
// без приведения отсчёта (форма редактирует сырые значения)
func AdminGetPreLanding(w http.ResponseWriter, r *http.Request) {

	searchID := chi.URLParam(r, "search_id")

	var config models.PreLandingConfig
	result := db.DB.Db.First(&config, "related_search_id = ?", searchID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			http.Error(w, "Конфигурация пре-лендинга не найдена", http.StatusNotFound)
			return
		}
		log.Printf("Ошибка при получении конфигурации пре-лендинга: %v", result.Error)
		http.Error(w, "Ошибка при получении конфигурации", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// AdminPutPreLanding сохраняет конфигурацию пре-лендинга поиска
// (вставка или обновление - по одной строке на поиск).
// С параметром ?mirror=mingle та же конфигурация дублируется во вторую базу
// по ключу, равному id поиска. Записи независимые: отказ второй базы
// возвращается ошибкой с её именем, первая запись при этом не откатывается.
func AdminPutPreLanding(w http.ResponseWriter, r *http.Request) {

	if !guardShutdown(w) {
		return
	}

	searchID := chi.URLParam(r, "search_id")

	config := new(models.PreLandingConfig)
	if !readJSON(w, r, config) {
		return
	}
	config.RelatedSearchID = searchID
	if err := validateStruct(config); err != nil {
		log.Printf("Получены некорректные данные: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// вставка или обновление по related_search_id
	var existing models.PreLandingConfig
	err := db.DB.Db.First(&existing, "related_search_id = ?", searchID).Error
	switch {
	case err == nil:
		config.ID = existing.ID
		config.CreatedAt = existing.CreatedAt
		err = db.DB.Db.Save(config).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = db.DB.Db.Create(config).Error
	}
	if err != nil {
		log.Printf("Ошибка при сохранении конфигурации пре-лендинга: %v", err)
		http.Error(w, "Ошибка при сохранении конфигурации", http.StatusInternalServerError)
		return
	}

	if err := cache.DelCache(cache.PreLandingKey(searchID)); err != nil {
		log.Printf("Ошибка инвалидации кэша пре-лендинга %s: %v", searchID, err)
	}

	// дублирование во вторую базу по требованию
	if r.URL.Query().Get("mirror") == "mingle" {
		if err := mirrorPreLanding(searchID, config); err != nil {
			log.Printf("Ошибка зеркалирования конфигурации в mingle: %v", err)
			http.Error(w, "основная база сохранена, запись в mingle не удалась", http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, http.StatusOK, config)
}

// mirrorPreLanding переносит конфигурацию основной базы в mingle-форму
// и делает upsert по ключу key
func mirrorPreLanding(searchID string, config *models.PreLandingConfig) error {

	if !db.MingleReady() {
		return errors.New("база mingle недоступна")
	}

	mingleConfig := models.PrelanderConfig{
		Key:                 searchID,
		LogoURL:             config.LogoURL,
		MainImageURL:        config.MainImageURL,
		Headline:            config.Headline,
		Subtitle:            config.Subtitle,
		Description:         config.Description,
		RedirectDescription: config.RedirectDescription,
		CountdownSeconds:    config.CountdownSeconds,
		BackgroundColor:     config.BackgroundColor,
		ButtonColor:         config.ButtonColor,
		ButtonTextColor:     config.ButtonTextColor,
	}

	var existing models.PrelanderConfig
	err := db.Mingle.Db.First(&existing, "key = ?", searchID).Error
	switch {
	case err == nil:
		mingleConfig.ID = existing.ID
		mingleConfig.CreatedAt = existing.CreatedAt
		return db.Mingle.Db.Save(&mingleConfig).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return db.Mingle.Db.Create(&mingleConfig).Error
	}

	return err
}
