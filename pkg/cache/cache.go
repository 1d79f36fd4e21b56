package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/db"
	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
	"github.com/redis/go-redis/v9"
)

var Rdb *redis.Client // клиент Redis

var ttl time.Duration // время жизни данных в кэше

// InitRedis запускает работу с Redis
func InitRedis(cfg *configuration.ConfCache) error {

	ttl = cfg.TTL

	// заводим клиента Redis
	Rdb = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// проверяем подключение
	if err := Rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("ошибка подключения к Redis: %v\n", err)
		return err
	}

	// прогреваем кэш опубликованными статьями
	if err := warmUp(); err != nil {
		log.Printf("ошибка прогрева кэша: %v", err)
		return err
	}

	return nil
}

// GetTTL возвращает настроенное время жизни записи
func GetTTL() time.Duration {

	if ttl == 0 {
		return 600 * time.Second
	}
	return ttl
}

// warmUp загружает опубликованные статьи в кэш при старте
func warmUp() error {

	var blogs []models.Blog
	err := db.DB.Db.
		Preload("Category").
		Where("status = ?", models.StatusPublished).
		Find(&blogs).Error
	if err != nil {
		return fmt.Errorf("ошибка при получении статей для прогрева: %w", err)
	}

	log.Printf("Прогреваем кэш: %d опубликованных статей", len(blogs))

	for _, blog := range blogs {
		if err := SetCache(fmt.Sprintf("blog:%s", blog.Slug), blog, GetTTL()); err != nil {
			log.Printf("ошибка кэширования статьи %s при старте: %v", blog.Slug, err)
		}
	}

	return nil
}

// GetCache получает запись из кэша
func GetCache(key string) ([]byte, error) {

	// кэш может быть не инициализирован (Redis недоступен) - тогда ведём себя как промах
	if Rdb == nil {
		return nil, redis.Nil
	}

	return Rdb.Get(context.Background(), key).Bytes()
}

// SetCache сохраняет запись в кэш
func SetCache(key string, value interface{}, ttl time.Duration) error {

	if Rdb == nil {
		return nil
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации данных при добавлении в кэш: %w", err)
	}
	return Rdb.Set(context.Background(), key, jsonData, ttl).Err()
}

// DelCache удаляет записи из кэша (вызывается при изменениях в админке)
func DelCache(keys ...string) error {

	if Rdb == nil || len(keys) == 0 {
		return nil
	}

	return Rdb.Del(context.Background(), keys...).Err()
}

// BlogKey - ключ кэша статьи по слагу
func BlogKey(slug string) string {

	return fmt.Sprintf("blog:%s", slug)
}

// SearchKey - ключ кэша выдачи веб-результатов поиска для страницы wr
func SearchKey(searchID string, wr int) string {

	return fmt.Sprintf("search:%s:wr:%d", searchID, wr)
}

// PreLandingKey - ключ кэша конфигурации пре-лендинга
func PreLandingKey(searchID string) string {

	return fmt.Sprintf("prelanding:%s", searchID)
}
