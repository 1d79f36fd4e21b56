package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
	"github.com/golang-jwt/jwt/v5"
)

// IssueToken проверяет учётные данные администратора и выдаёт подписанный JWT
func IssueToken(cfg *configuration.ConfAuth, login, password string) (string, error) {

	if login != cfg.Login || password != cfg.Password {
		return "", fmt.Errorf("неверный логин или пароль")
	}

	claims := jwt.MapClaims{
		"sub": login,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(cfg.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return signed, nil
}

// verifyToken разбирает и проверяет токен из заголовка Authorization
func verifyToken(secret, tokenString string) error {

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("токен недействителен")
	}

	return nil
}

// Middleware закрывает админские маршруты: требует Bearer-токен с верной подписью
func Middleware(cfg *configuration.ConfAuth) func(http.Handler) http.Handler {

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "требуется авторизация", http.StatusUnauthorized)
				return
			}

			if err := verifyToken(cfg.JWTSecret, strings.TrimPrefix(header, "Bearer ")); err != nil {
				http.Error(w, "токен недействителен", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
