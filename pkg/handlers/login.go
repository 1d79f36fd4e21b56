package handlers

import (
	"log"
	"net/http"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/auth"
)

// PostLogin проверяет логин и пароль админки и выдаёт JWT
func PostLogin(w http.ResponseWriter, r *http.Request) {

	var req struct {
		Login    string `json:"login" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if err := validateStruct(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	token, err := auth.IssueToken(&conf.Auth, req.Login, req.Password)
	if err != nil {
		log.Printf("Неудачная попытка входа в админку: %v", err)
		http.Error(w, "неверный логин или пароль", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Token string `json:"token"`
	}{Token: token})
}
