package configuration

import (
	"os"
	"strconv"
	"time"
)

// выносим константы конфигурации по умолчанию, чтобы были на виду
const (
	portConst = "8081" // порт сервиса по умолчанию

	hostDBConst     = "postgres"       // имя службы (контейнера) основной базы в сети докера
	portDBConst     = "5432"           // порт основной базы данных
	nameDBConst     = "starin-hub-db"  // имя основной базы данных
	passwordDBConst = "postgres"       // пароль основной базы данных
	userDBConst     = "postgres"       // пользователь основной базы данных
	nameMingleConst = "mingle-db"      // имя базы второго проекта (mingle)
	hostMingleConst = "postgres"       // хост базы второго проекта
	portMingleConst = "5432"           // порт базы второго проекта

	hostRedisConst = "localhost" // хост Redis
	portRedisConst = "6379"      // порт Redis
	ttlRedisConst  = "600s"      // время жизни записи в кэше

	adminLoginConst    = "admin" // логин админки по умолчанию (менять в .env!)
	adminPasswordConst = "admin" // пароль админки по умолчанию (менять в .env!)
	tokenTTLConst      = "12h"   // время жизни токена админки

	ipLookupURLConst     = "https://api.ipify.org?format=json" // сервис определения внешнего IP
	ipLookupTimeoutConst = "2s"                                // таймаут обращения к сервису IP
)

// ConfServer описывает настройки HTTP-сервера
type ConfServer struct {
	Port string // порт, на котором слушает сервис
}

// ConfDB описывает настройки подключения к базе данных
type ConfDB struct {
	Host     string // имя службы (контейнера) в сети докера
	Port     string // порт, на котором сидит база данных
	Name     string // имя базы данных
	User     string // имя пользователя базы данных
	Password string // пароль базы данных
}

// ConfCache описывает настройки Redis
type ConfCache struct {
	Host     string        // хост Redis
	Port     string        // порт Redis
	Password string        // пароль Redis
	DB       int           // номер базы в Redis
	TTL      time.Duration // время жизни данных в кэше
}

// ConfAuth описывает настройки доступа в админку
type ConfAuth struct {
	Login     string        // логин администратора
	Password  string        // пароль администратора
	JWTSecret string        // секрет подписи токенов
	TokenTTL  time.Duration // время жизни токена
}

// ConfTracking описывает настройки трекинга посетителей
type ConfTracking struct {
	IPLookupURL     string        // адрес сервиса определения внешнего IP
	IPLookupTimeout time.Duration // таймаут запроса к сервису
}

// Config - корневая структура конфигурации приложения
type Config struct {
	Server   ConfServer
	DB       ConfDB // основной проект
	MingleDB ConfDB // второй проект (mingle)
	Cache    ConfCache
	Auth     ConfAuth
	Tracking ConfTracking
}

// getEnvString проверяет наличие и корректность переменной окружения (строковое значение)
func getEnvString(envVariable, defaultValue string) string {

	value, ok := os.LookupEnv(envVariable)
	if ok {
		return value
	}

	return defaultValue
}

// getEnvInt читает целочисленную переменную окружения
func getEnvInt(envVariable string, defaultValue int) int {

	value, ok := os.LookupEnv(envVariable)
	if !ok {
		return defaultValue
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return n
}

// getEnvDuration читает переменную окружения как time.Duration (например "600s", "12h")
func getEnvDuration(envVariable, defaultValue string) time.Duration {

	value, ok := os.LookupEnv(envVariable)
	if !ok {
		value = defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		d, _ = time.ParseDuration(defaultValue)
	}

	return d
}

// Read уточняет конфигурацию с учётом переменных окружения
func Read() *Config {

	return &Config{
		Server: ConfServer{
			Port: getEnvString("SERVICE_PORT", portConst),
		},
		DB: ConfDB{
			Host:     getEnvString("DB_HOST_NAME", hostDBConst),
			Port:     getEnvString("DB_PORT", portDBConst),
			Name:     getEnvString("DB_NAME", nameDBConst),
			User:     getEnvString("DB_USER", userDBConst),
			Password: getEnvString("DB_PASSWORD", passwordDBConst),
		},
		MingleDB: ConfDB{
			Host:     getEnvString("MINGLE_DB_HOST_NAME", hostMingleConst),
			Port:     getEnvString("MINGLE_DB_PORT", portMingleConst),
			Name:     getEnvString("MINGLE_DB_NAME", nameMingleConst),
			User:     getEnvString("MINGLE_DB_USER", userDBConst),
			Password: getEnvString("MINGLE_DB_PASSWORD", passwordDBConst),
		},
		Cache: ConfCache{
			Host:     getEnvString("REDIS_HOST_NAME", hostRedisConst),
			Port:     getEnvString("REDIS_PORT", portRedisConst),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("REDIS_TTL", ttlRedisConst),
		},
		Auth: ConfAuth{
			Login:     getEnvString("ADMIN_LOGIN", adminLoginConst),
			Password:  getEnvString("ADMIN_PASSWORD", adminPasswordConst),
			JWTSecret: getEnvString("ADMIN_JWT_SECRET", "starin-hub-secret"),
			TokenTTL:  getEnvDuration("ADMIN_TOKEN_TTL", tokenTTLConst),
		},
		Tracking: ConfTracking{
			IPLookupURL:     getEnvString("IP_LOOKUP_URL", ipLookupURLConst),
			IPLookupTimeout: getEnvDuration("IP_LOOKUP_TIMEOUT", ipLookupTimeoutConst),
		},
	}
}
