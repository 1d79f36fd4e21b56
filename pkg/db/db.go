package db

import (
	"fmt"
	"log"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dbinstance struct {
	Db *gorm.DB
}

// DB - подключение к базе основного проекта
var DB Dbinstance

// ConnectDB устанавливает соединение с базой основного проекта
func ConnectDB(cfg *configuration.ConfDB) error {

	// dsn - URL для соединения с базой данных
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)

	// создаём подключение к базе данных
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("Не удалось подключиться к базе данных: %v", err)
		return fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	log.Println("Подключение к основной базе данных установлено.")

	log.Println("Запуск миграций основной базы.")

	// выполняем миграцию таблиц
	err = runMigrations(db)
	if err != nil {
		log.Printf("Ошибка при выполнении миграций: %v", err)
		return fmt.Errorf("ошибка миграции: %w", err)
	}

	log.Println("Миграции основной базы успешно применены.")

	DB = Dbinstance{
		Db: db,
	}

	return nil
}

// runMigrations выполняет последовательное создание всех таблиц базы данных
// таблицы создаются в порядке зависимостей: сначала родительские, затем дочерние
func runMigrations(db *gorm.DB) error {

	migrations := []func(*gorm.DB) error{
		createCategoriesTable,       // категории (родительская для blogs)
		createBlogsTable,            // статьи блога
		createRelatedSearchesTable,  // связанные поиски (зависят от blogs)
		createWebResultsTable,       // веб-результаты (зависят от related_searches)
		createPreLandingConfigTable, // конфигурации пре-лендинга (зависят от related_searches)
		createEmailSubmissionsTable, // журнал email-подписок
		createTrackingEventsTable,   // журнал событий трекинга
	}

	// выполняем каждую миграцию последовательно
	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// createCategoriesTable создает таблицу categories
func createCategoriesTable(db *gorm.DB) error {
	sql := `
		-- создаем таблицу категорий блога
		CREATE TABLE IF NOT EXISTS categories (
			id SERIAL PRIMARY KEY,                          -- автоинкрементный идентификатор
			name VARCHAR(100) NOT NULL,                     -- название категории
			code_range VARCHAR(50),                         -- диапазон кодов категории
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP  -- метка времени создания записи
		);
	`

	return db.Exec(sql).Error
}

// createBlogsTable создает таблицу blogs
// статьи ищутся публично только по slug и только в статусе published
func createBlogsTable(db *gorm.DB) error {
	sql := `
		-- создаем таблицу статей блога
		CREATE TABLE IF NOT EXISTS blogs (
			id UUID PRIMARY KEY,                                 -- идентификатор статьи
			title VARCHAR(255) NOT NULL,                         -- заголовок
			slug VARCHAR(255) UNIQUE NOT NULL,                   -- уникальный слаг для публичной ссылки
			author VARCHAR(100) NOT NULL,                        -- автор
			content TEXT NOT NULL,                               -- текст статьи (абзацы через перевод строки)
			featured_image VARCHAR(1024),                        -- необязательная обложка (URL)
			category_id INTEGER REFERENCES categories(id),       -- связь с категорией
			status VARCHAR(20) DEFAULT 'draft',                  -- draft | published
			published_at TIMESTAMP,                              -- момент публикации
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,      -- метка времени создания
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP       -- метка времени обновления
		);

		-- создаем индексы для публичных выборок
		CREATE UNIQUE INDEX IF NOT EXISTS idx_blogs_slug ON blogs(slug);
		CREATE INDEX IF NOT EXISTS idx_blogs_status ON blogs(status);
		CREATE INDEX IF NOT EXISTS idx_blogs_published_at ON blogs(published_at);
	`

	return db.Exec(sql).Error
}

// createRelatedSearchesTable создает таблицу related_searches
func createRelatedSearchesTable(db *gorm.DB) error {
	sql := `
		-- создаем таблицу связанных поисков
		CREATE TABLE IF NOT EXISTS related_searches (
			id UUID PRIMARY KEY,                                     -- идентификатор поиска
			blog_id UUID REFERENCES blogs(id) ON DELETE CASCADE,     -- связь со статьёй
			search_text VARCHAR(255) NOT NULL,                       -- текст поиска
			search_order INTEGER DEFAULT 0,                          -- порядок вывода под статьёй
			wr_parameter INTEGER DEFAULT 1,                          -- селектор страницы веб-результатов
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP           -- метка времени создания
		);

		CREATE INDEX IF NOT EXISTS idx_related_searches_blog_id ON related_searches(blog_id);
	`

	return db.Exec(sql).Error
}

// createWebResultsTable создает таблицу web_results
// спонсорские результаты всегда выводятся раньше органических
func createWebResultsTable(db *gorm.DB) error {
	sql := `
		-- создаем таблицу веб-результатов
		CREATE TABLE IF NOT EXISTS web_results (
			id UUID PRIMARY KEY,                                                   -- идентификатор результата
			related_search_id UUID NOT NULL REFERENCES related_searches(id) ON DELETE CASCADE, -- связь с поиском
			title VARCHAR(255) NOT NULL,                                           -- заголовок результата
			url VARCHAR(1024) NOT NULL,                                            -- целевой URL
			description TEXT NOT NULL,                                             -- описание
			logo_url VARCHAR(1024),                                                -- логотип (URL)
			is_sponsored BOOLEAN DEFAULT FALSE,                                    -- спонсорский флаг
			wr_parameter INTEGER DEFAULT 1,                                        -- селектор страницы
			display_order INTEGER DEFAULT 0,                                       -- порядок внутри группы
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,                        -- метка времени создания
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP                         -- метка времени обновления
		);

		CREATE INDEX IF NOT EXISTS idx_web_results_search_id ON web_results(related_search_id);
	`

	return db.Exec(sql).Error
}

// createPreLandingConfigTable создает таблицу pre_landing_config
func createPreLandingConfigTable(db *gorm.DB) error {
	sql := `
		-- создаем таблицу конфигураций пре-лендинга
		CREATE TABLE IF NOT EXISTS pre_landing_config (
			id UUID PRIMARY KEY,                                                   -- идентификатор конфигурации
			related_search_id UUID UNIQUE NOT NULL REFERENCES related_searches(id) ON DELETE CASCADE, -- одна строка на поиск
			logo_url VARCHAR(1024),                                                -- логотип
			main_image_url VARCHAR(1024),                                          -- основное изображение
			headline VARCHAR(255),                                                 -- заголовок
			subtitle VARCHAR(255),                                                 -- подзаголовок
			description TEXT,                                                      -- описание
			redirect_description VARCHAR(255),                                     -- текст перед редиректом
			countdown_seconds INTEGER DEFAULT 3,                                   -- обратный отсчёт (2..10)
			background_color VARCHAR(20) DEFAULT '#ffffff',                        -- цвет фона
			button_color VARCHAR(20) DEFAULT '#000000',                            -- цвет кнопки
			button_text_color VARCHAR(20) DEFAULT '#ffffff',                       -- цвет текста кнопки
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,                        -- метка времени создания
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP                         -- метка времени обновления
		);
	`

	return db.Exec(sql).Error
}

// createEmailSubmissionsTable создает таблицу email_submissions
// журнал только на добавление, строки никогда не изменяются
func createEmailSubmissionsTable(db *gorm.DB) error {
	sql := `
		-- создаем журнал захваченных email
		CREATE TABLE IF NOT EXISTS email_submissions (
			id UUID PRIMARY KEY,                                      -- идентификатор записи
			email VARCHAR(255) NOT NULL,                              -- адрес посетителя
			related_search_id UUID REFERENCES related_searches(id),   -- поиск, с которого пришли
			session_id VARCHAR(100),                                  -- идентификатор сессии
			ip_address VARCHAR(50),                                   -- IP посетителя
			country VARCHAR(50),                                      -- страна (пока unknown)
			source VARCHAR(255),                                      -- источник трафика
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP            -- метка времени создания
		);

		CREATE INDEX IF NOT EXISTS idx_email_submissions_search_id ON email_submissions(related_search_id);
	`

	return db.Exec(sql).Error
}

// createTrackingEventsTable создает таблицу tracking_events
// единственный источник данных для всей аналитики
func createTrackingEventsTable(db *gorm.DB) error {
	sql := `
		-- создаем журнал событий трекинга
		CREATE TABLE IF NOT EXISTS tracking_events (
			id UUID PRIMARY KEY,                                      -- идентификатор события
			session_id VARCHAR(100) NOT NULL,                         -- идентификатор сессии
			event_type VARCHAR(50) NOT NULL,                          -- тип события
			event_data JSONB DEFAULT '{}',                            -- типизированная нагрузка события
			ip_address VARCHAR(50),                                   -- IP посетителя
			user_agent VARCHAR(512),                                  -- user-agent браузера
			device_type VARCHAR(20),                                  -- desktop | tablet | mobile
			country VARCHAR(50),                                      -- страна (пока unknown)
			source VARCHAR(255),                                      -- источник трафика
			blog_id UUID REFERENCES blogs(id),                        -- статья, если применимо
			related_search_id UUID REFERENCES related_searches(id),   -- поиск, если применимо
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP            -- метка времени создания
		);

		CREATE INDEX IF NOT EXISTS idx_tracking_events_session_id ON tracking_events(session_id);
		CREATE INDEX IF NOT EXISTS idx_tracking_events_event_type ON tracking_events(event_type);
		CREATE INDEX IF NOT EXISTS idx_tracking_events_created_at ON tracking_events(created_at);
	`

	return db.Exec(sql).Error
}

// CloseDB закрывает соединение с основной базой
func CloseDB() {

	if DB.Db == nil {
		return
	}

	// получаем объект *sql.DB для закрытия соединения
	sqlDB, err := DB.Db.DB()
	if err != nil {
		log.Printf("Ошибка при получении SQL соединения: %v", err)
		return
	}

	// закрываем соединение
	if err := sqlDB.Close(); err != nil {
		log.Printf("Предупреждение: ошибка при закрытии БД: %v", err)
	} else {
		log.Println("Основная БД успешно отключена.")
	}
}
