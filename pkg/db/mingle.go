package db

import (
	"fmt"
	"log"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Mingle - подключение к базе второго проекта.
// Схема пересекается с основной, но имеет другую форму,
// поэтому проект живёт в отдельной базе со своими миграциями.
var Mingle Dbinstance

// ConnectMingleDB устанавливает соединение с базой проекта mingle
func ConnectMingleDB(cfg *configuration.ConfDB) error {

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("Не удалось подключиться к базе mingle: %v", err)
		return fmt.Errorf("ошибка подключения к БД mingle: %w", err)
	}

	log.Println("Подключение к базе mingle установлено.")

	log.Println("Запуск миграций базы mingle.")

	err = runMingleMigrations(db)
	if err != nil {
		log.Printf("Ошибка при выполнении миграций mingle: %v", err)
		return fmt.Errorf("ошибка миграции mingle: %w", err)
	}

	log.Println("Миграции базы mingle успешно применены.")

	Mingle = Dbinstance{
		Db: db,
	}

	return nil
}

// MingleReady сообщает, доступна ли база второго проекта.
// При недоступности на старте сервис продолжает работу без mingle-операций.
func MingleReady() bool {

	return Mingle.Db != nil
}

// runMingleMigrations создает таблицы второго проекта
func runMingleMigrations(db *gorm.DB) error {

	migrations := []func(*gorm.DB) error{
		createMingleRelatedSearchesTable, // поиски mingle (без привязки к блогу)
		createMingleWebResultsTable,      // результаты mingle (страница + позиция)
		createPrelanderConfigsTable,      // конфигурации по ключу key
		createLandingPageTable,           // лендинги
		createMingleAnalyticsTables,      // три таблицы аналитики
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// createMingleRelatedSearchesTable создает таблицу related_searches второго проекта
func createMingleRelatedSearchesTable(db *gorm.DB) error {
	sql := `
		-- создаем таблицу связанных поисков mingle
		CREATE TABLE IF NOT EXISTS related_searches (
			id UUID PRIMARY KEY,                             -- идентификатор поиска
			search_text VARCHAR(255) NOT NULL,               -- текст поиска
			title VARCHAR(255),                              -- отображаемый заголовок
			web_result_page INTEGER DEFAULT 1,               -- страница веб-результатов
			position INTEGER DEFAULT 1,                      -- позиция на странице
			display_order INTEGER DEFAULT 0,                 -- порядок вывода
			is_active BOOLEAN DEFAULT TRUE,                  -- показывать ли публично
			pre_landing_page_key VARCHAR(100),               -- ключ конфигурации пре-лендинга
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP   -- метка времени создания
		);
	`

	return db.Exec(sql).Error
}

// createMingleWebResultsTable создает таблицу web_results второго проекта
func createMingleWebResultsTable(db *gorm.DB) error {
	sql := `
		-- создаем таблицу веб-результатов mingle
		CREATE TABLE IF NOT EXISTS web_results (
			id UUID PRIMARY KEY,                             -- идентификатор результата
			title VARCHAR(255) NOT NULL,                     -- заголовок
			description TEXT,                                -- описание
			target_url VARCHAR(1024) NOT NULL,               -- целевой URL
			logo_url VARCHAR(1024),                          -- логотип
			page_number INTEGER DEFAULT 1,                   -- номер страницы выдачи
			position INTEGER DEFAULT 1,                      -- позиция на странице
			is_active BOOLEAN DEFAULT TRUE,                  -- показывать ли публично
			is_sponsored BOOLEAN DEFAULT FALSE,              -- спонсорский флаг
			pre_landing_page_key VARCHAR(100),               -- ключ конфигурации пре-лендинга
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,  -- метка времени создания
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP   -- метка времени обновления
		);

		CREATE INDEX IF NOT EXISTS idx_mingle_web_results_page ON web_results(page_number, position);
	`

	return db.Exec(sql).Error
}

// createPrelanderConfigsTable создает таблицу prelander_configs
// сохранение из админки идёт через upsert по натуральному ключу key
func createPrelanderConfigsTable(db *gorm.DB) error {
	sql := `
		-- создаем таблицу конфигураций пре-лендинга mingle
		CREATE TABLE IF NOT EXISTS prelander_configs (
			id UUID PRIMARY KEY,                             -- идентификатор конфигурации
			key VARCHAR(100) UNIQUE NOT NULL,                -- натуральный ключ
			logo_url VARCHAR(1024),                          -- логотип
			main_image_url VARCHAR(1024),                    -- основное изображение
			headline VARCHAR(255),                           -- заголовок
			subtitle VARCHAR(255),                           -- подзаголовок
			description TEXT,                                -- описание
			redirect_description VARCHAR(255),               -- текст перед редиректом
			countdown_seconds INTEGER DEFAULT 3,             -- обратный отсчёт (2..10)
			background_color VARCHAR(20) DEFAULT '#ffffff',  -- цвет фона
			button_color VARCHAR(20) DEFAULT '#000000',      -- цвет кнопки
			button_text_color VARCHAR(20) DEFAULT '#ffffff', -- цвет текста кнопки
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,  -- метка времени создания
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP   -- метка времени обновления
		);
	`

	return db.Exec(sql).Error
}

// createLandingPageTable создает таблицу landing_page
func createLandingPageTable(db *gorm.DB) error {
	sql := `
		-- создаем таблицу лендингов mingle
		CREATE TABLE IF NOT EXISTS landing_page (
			id UUID PRIMARY KEY,                             -- идентификатор лендинга
			title VARCHAR(255) NOT NULL,                     -- заголовок
			description TEXT,                                -- описание
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP   -- метка времени создания
		);
	`

	return db.Exec(sql).Error
}

// createMingleAnalyticsTables создает три таблицы аналитики mingle
func createMingleAnalyticsTables(db *gorm.DB) error {
	sql := `
		-- сессионные сводки
		CREATE TABLE IF NOT EXISTS analytics (
			id UUID PRIMARY KEY,                             -- идентификатор записи
			session_id VARCHAR(100),                         -- идентификатор сессии
			ip_address VARCHAR(50),                          -- IP посетителя
			country VARCHAR(50),                             -- страна
			device VARCHAR(20),                              -- тип устройства
			page_views INTEGER DEFAULT 0,                    -- просмотры страниц
			clicks INTEGER DEFAULT 0,                        -- клики
			time_spent INTEGER DEFAULT 0,                    -- время на сайте, секунды
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP    -- момент записи
		);

		-- события аналитики
		CREATE TABLE IF NOT EXISTS analytics_events (
			id UUID PRIMARY KEY,                             -- идентификатор события
			session_id VARCHAR(100),                         -- идентификатор сессии
			event_type VARCHAR(50),                          -- тип события
			event_label VARCHAR(255),                        -- метка события
			ip_address VARCHAR(50),                          -- IP посетителя
			country VARCHAR(50),                             -- страна
			device VARCHAR(20),                              -- тип устройства
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP   -- метка времени создания
		);

		-- клики по веб-результатам
		CREATE TABLE IF NOT EXISTS click_events (
			id UUID PRIMARY KEY,                             -- идентификатор клика
			session_id VARCHAR(100),                         -- идентификатор сессии
			result_title VARCHAR(255),                       -- заголовок результата
			result_url VARCHAR(1024),                        -- URL результата
			page INTEGER DEFAULT 1,                          -- страница выдачи
			position INTEGER DEFAULT 1,                      -- позиция на странице
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP    -- момент клика
		);
	`

	return db.Exec(sql).Error
}

// CloseMingleDB закрывает соединение с базой второго проекта
func CloseMingleDB() {

	if Mingle.Db == nil {
		return
	}

	sqlDB, err := Mingle.Db.DB()
	if err != nil {
		log.Printf("Ошибка при получении SQL соединения mingle: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Предупреждение: ошибка при закрытии БД mingle: %v", err)
	} else {
		log.Println("БД mingle успешно отключена.")
	}
}
