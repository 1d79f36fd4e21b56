package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/configuration"
)

// conf хранит конфигурацию сервиса для обработчиков (логин админки, секрет JWT)
var conf *configuration.Config

// Setup передаёт обработчикам конфигурацию (вызывается из main до старта сервера)
func Setup(cfg *configuration.Config) {

	conf = cfg
}

// validate указатель на валидируемую структуру
var validate = validator.New()

// validateStruct проверяет заполненность полей поступивших данных
func validateStruct(v interface{}) error {

	err := validate.Struct(v)
	if err != nil {
		// преобразуем ошибки валидации в читаемый формат
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errorMessages []string
			for _, fieldError := range validationErrors {
				errorMessages = append(errorMessages,
					fmt.Sprintf("Поле %s: %s", fieldError.Field(), fieldError.Tag()))
			}
			return fmt.Errorf("ошибки валидации: %v", errorMessages)
		}
	}

	return err
}

// readJSON читает тело запроса и парсит json в структуру.
// При ошибке сам отвечает 400 и возвращает false.
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {

	var buf bytes.Buffer

	// читаем тело запроса
	_, err := buf.ReadFrom(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}

	// парсим json из запроса в структуру
	if err = json.Unmarshal(buf.Bytes(), dst); err != nil {
		http.Error(w, "некорректный JSON в теле запроса", http.StatusBadRequest)
		return false
	}

	return true
}

// writeJSON маршалит данные в JSON с отступами для читаемости и отправляет ответ
func writeJSON(w http.ResponseWriter, status int, v interface{}) {

	resp, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		log.Printf("Ошибка при маршалинге данных: %v", err)
		http.Error(w, "Ошибка при формировании ответа", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(resp)
}
