package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// статусы статьи блога
const (
	StatusDraft     = "draft"     // черновик, публично не виден
	StatusPublished = "published" // опубликована
)

// типы событий трекинга
const (
	EventBlogView           = "blog_view"            // просмотр статьи
	EventRelatedSearchClick = "related_search_click" // клик по связанному поиску
	EventSearchPageView     = "search_page_view"     // просмотр страницы поиска
	EventVisitNowClick      = "visit_now_click"      // клик по кнопке Visit Now
	EventWebResultClick     = "web_result_click"     // клик по веб-результату
	EventEmailSubmission    = "email_submission"     // отправка email
)

// JSONB хранит произвольный JSON в колонке jsonb (в sqlite-тестах - текст)
type JSONB json.RawMessage

// Value реализует driver.Valuer для записи в базу
func (j JSONB) Value() (driver.Value, error) {

	if len(j) == 0 {
		return "{}", nil
	}
	return string(j), nil
}

// Scan реализует sql.Scanner для чтения из базы
func (j *JSONB) Scan(value interface{}) error {

	switch v := value.(type) {
	case nil:
		*j = JSONB("{}")
	case []byte:
		*j = append(JSONB{}, v...)
	case string:
		*j = JSONB(v)
	default:
		return fmt.Errorf("неподдерживаемый тип jsonb: %T", value)
	}

	return nil
}

// MarshalJSON отдаёт содержимое как есть, без двойного кодирования
func (j JSONB) MarshalJSON() ([]byte, error) {

	if len(j) == 0 {
		return []byte("{}"), nil
	}
	return j, nil
}

// UnmarshalJSON принимает содержимое как есть
func (j *JSONB) UnmarshalJSON(data []byte) error {

	*j = append(JSONB{}, data...)
	return nil
}

// Категория блога
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null" validate:"required"`
	CodeRange string    `json:"code_range" gorm:"size:50" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Статья блога
type Blog struct {
	ID            string     `json:"id" gorm:"type:uuid;primaryKey"`
	Title         string     `json:"title" gorm:"size:255;not null" validate:"required"`
	Slug          string     `json:"slug" gorm:"size:255;uniqueIndex;not null" validate:"required"`
	Author        string     `json:"author" gorm:"size:100;not null" validate:"required"`
	Content       string     `json:"content" gorm:"type:text;not null" validate:"required"`
	FeaturedImage string     `json:"featured_image,omitempty" gorm:"size:1024"`
	CategoryID    *uint      `json:"category_id,omitempty"`
	Category      *Category  `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Status        string     `json:"status" gorm:"size:20;default:draft" validate:"omitempty,oneof=draft published"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BeforeCreate выдаёт статье UUID, если его не прислали
func (b *Blog) BeforeCreate(tx *gorm.DB) error {

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Связанный поиск (вход в воронку под статьёй)
type RelatedSearch struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	BlogID      *string   `json:"blog_id,omitempty" gorm:"type:uuid;index"`
	SearchText  string    `json:"search_text" gorm:"size:255;not null" validate:"required"`
	SearchOrder int       `json:"search_order" gorm:"default:0"`
	WRParameter int       `json:"wr_parameter" gorm:"default:1" validate:"omitempty,min=1"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *RelatedSearch) BeforeCreate(tx *gorm.DB) error {

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Веб-результат синтетической поисковой выдачи
type WebResult struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey"`
	RelatedSearchID string    `json:"related_search_id" gorm:"type:uuid;index;not null" validate:"required"`
	Title           string    `json:"title" gorm:"size:255;not null" validate:"required"`
	URL             string    `json:"url" gorm:"size:1024;not null" validate:"required,url"`
	Description     string    `json:"description" gorm:"type:text;not null" validate:"required"`
	LogoURL         string    `json:"logo_url,omitempty" gorm:"size:1024"`
	IsSponsored     bool      `json:"is_sponsored" gorm:"default:false"`
	WRParameter     int       `json:"wr_parameter" gorm:"default:1" validate:"omitempty,min=1"`
	DisplayOrder    int       `json:"display_order" gorm:"default:0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (w *WebResult) BeforeCreate(tx *gorm.DB) error {

	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// Конфигурация пре-лендинга (одна строка на связанный поиск)
type PreLandingConfig struct {
	ID                  string    `json:"id" gorm:"type:uuid;primaryKey"`
	RelatedSearchID     string    `json:"related_search_id" gorm:"type:uuid;uniqueIndex;not null" validate:"required"`
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

// TableName сохраняет имя таблицы исходного проекта (единственное число)
func (PreLandingConfig) TableName() string { return "pre_landing_config" }

func (p *PreLandingConfig) BeforeCreate(tx *gorm.DB) error {

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Захваченный email (журнал только на добавление)
type EmailSubmission struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey"`
	Email           string    `json:"email" gorm:"size:255;not null" validate:"required,email"`
	RelatedSearchID *string   `json:"related_search_id,omitempty" gorm:"type:uuid;index"`
	SessionID       string    `json:"session_id" gorm:"size:100"`
	IPAddress       string    `json:"ip_address" gorm:"size:50"`
	Country         string    `json:"country" gorm:"size:50"`
	Source          string    `json:"source" gorm:"size:255"`
	CreatedAt       time.Time `json:"created_at"`
}

func (e *EmailSubmission) BeforeCreate(tx *gorm.DB) error {

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Событие трекинга (журнал только на добавление, основа всей аналитики)
type TrackingEvent struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID       string    `json:"session_id" gorm:"size:100;index;not null" validate:"required"`
	EventType       string    `json:"event_type" gorm:"size:50;index;not null" validate:"required"`
	EventData       JSONB     `json:"event_data" gorm:"type:jsonb"`
	IPAddress       string    `json:"ip_address" gorm:"size:50"`
	UserAgent       string    `json:"user_agent" gorm:"size:512"`
	DeviceType      string    `json:"device_type" gorm:"size:20"`
	Country         string    `json:"country" gorm:"size:50"`
	Source          string    `json:"source" gorm:"size:255"`
	BlogID          *string   `json:"blog_id,omitempty" gorm:"type:uuid;index"`
	RelatedSearchID *string   `json:"related_search_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt       time.Time `json:"created_at"`
}

func (t *TrackingEvent) BeforeCreate(tx *gorm.DB) error {

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
