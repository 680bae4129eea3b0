package handler

import (
	"net/http"

	"shop-api/internal/model"
	"shop-api/internal/service"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if _, err := h.service.Register(r.Context(), payload); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "User registered successfully!", nil)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{
		Success:     true,
		Message:     "User successfully logged in!",
		AccessToken: token,
	})
}
