package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Сущности второго проекта (mingle). Схема пересекается с основной,
// но отличается формой: результаты привязаны к странице и позиции,
// а конфигурация пре-лендинга ключуется свободной строкой key.

// Связанный поиск проекта mingle
type MingleRelatedSearch struct {
	ID                string    `json:"id" gorm:"type:uuid;primaryKey"`
	SearchText        string    `json:"search_text" gorm:"size:255;not null" validate:"required"`
	Title             string    `json:"title" gorm:"size:255"`
	WebResultPage     int       `json:"web_result_page" gorm:"default:1"`
	Position          int       `json:"position" gorm:"default:1"`
	DisplayOrder      int       `json:"display_order" gorm:"default:0"`
	IsActive          bool      `json:"is_active" gorm:"default:true"`
	PreLandingPageKey string    `json:"pre_landing_page_key" gorm:"size:100"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName кладёт mingle-поиски в собственную таблицу второй базы
func (MingleRelatedSearch) TableName() string { return "related_searches" }

func (s *MingleRelatedSearch) BeforeCreate(tx *gorm.DB) error {

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Веб-результат проекта mingle (привязка через номер страницы и позицию)
type MingleWebResult struct {
	ID                string    `json:"id" gorm:"type:uuid;primaryKey"`
	Title             string    `json:"title" gorm:"size:255;not null" validate:"required"`
	Description       string    `json:"description" gorm:"type:text"`
	TargetURL         string    `json:"target_url" gorm:"size:1024;not null" validate:"required,url"`
	LogoURL           string    `json:"logo_url,omitempty" gorm:"size:1024"`
	PageNumber        int       `json:"page_number" gorm:"default:1"`
	Position          int       `json:"position" gorm:"default:1"`
	IsActive          bool      `json:"is_active" gorm:"default:true"`
	IsSponsored       bool      `json:"is_sponsored" gorm:"default:false"`
	PreLandingPageKey string    `json:"pre_landing_page_key" gorm:"size:100"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (MingleWebResult) TableName() string { return "web_results" }

func (w *MingleWebResult) BeforeCreate(tx *gorm.DB) error {

	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// Конфигурация пре-лендинга проекта mingle (upsert по натуральному ключу key)
type PrelanderConfig struct {
	ID                  string    `json:"id" gorm:"type:uuid;primaryKey"`
	Key                 string    `json:"key" gorm:"size:100;uniqueIndex;not null" validate:"required"`
	LogoURL             string    `json:"logo_url,omitempty" gorm:"size:1024"`
	MainImageURL        string    `json:"main_image_url,omitempty" gorm:"size:1024"`
	Headline            string    `json:"headline,omitempty" gorm:"size:255"`
	Subtitle            string    `json:"subtitle,omitempty" gorm:"size:255"`
	Description         string    `json:"description,omitempty" gorm:"type:text"`
	RedirectDescription string    `json:"redirect_description,omitempty" gorm:"size:255"`
	CountdownSeconds    int       `json:"countdown_seconds" gorm:"default:3"`
	BackgroundColor     string    `json:"background_color" gorm:"size:20;default:#ffffff"`
	ButtonColor         string    `json:"button_color" gorm:"size:20;default:#000000"`
	ButtonTextColor     string    `json:"button_text_color" gorm:"size:20;default:#ffffff"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (PrelanderConfig) TableName() string { return "prelander_configs" }

func (p *PrelanderConfig) BeforeCreate(tx *gorm.DB) error {

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Лендинг проекта mingle
type LandingPage struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"size:255;not null" validate:"required"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName сохраняет имя таблицы исходного проекта (единственное число)
func (LandingPage) TableName() string { return "landing_page" }

func (l *LandingPage) BeforeCreate(tx *gorm.DB) error {

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Сессионная сводка аналитики mingle
type MingleAnalytics struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID string    `json:"session_id" gorm:"size:100;index"`
	IPAddress string    `json:"ip_address" gorm:"size:50"`
	Country   string    `json:"country" gorm:"size:50"`
	Device    string    `json:"device" gorm:"size:20"`
	PageViews int       `json:"page_views" gorm:"default:0"`
	Clicks    int       `json:"clicks" gorm:"default:0"`
	TimeSpent int       `json:"time_spent" gorm:"default:0"`
	Timestamp time.Time `json:"timestamp"`
}

func (MingleAnalytics) TableName() string { return "analytics" }

func (a *MingleAnalytics) BeforeCreate(tx *gorm.DB) error {

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Событие аналитики mingle
type MingleAnalyticsEvent struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID  string    `json:"session_id" gorm:"size:100;index"`
	EventType  string    `json:"event_type" gorm:"size:50"`
	EventLabel string    `json:"event_label" gorm:"size:255"`
	IPAddress  string    `json:"ip_address" gorm:"size:50"`
	Country    string    `json:"country" gorm:"size:50"`
	Device     string    `json:"device" gorm:"size:20"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MingleAnalyticsEvent) TableName() string { return "analytics_events" }

func (e *MingleAnalyticsEvent) BeforeCreate(tx *gorm.DB) error {

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Клик по веб-результату mingle
type MingleClickEvent struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID   string    `json:"session_id" gorm:"size:100;index"`
	ResultTitle string    `json:"result_title" gorm:"size:255"`
	ResultURL   string    `json:"result_url" gorm:"size:1024"`
	Page        int       `json:"page" gorm:"default:1"`
	Position    int       `json:"position" gorm:"default:1"`
	Timestamp   time.Time `json:"timestamp"`
}

func (MingleClickEvent) TableName() string { return "click_events" }

func (c *MingleClickEvent) BeforeCreate(tx *gorm.DB) error {

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
