package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"shop-api/internal/middleware"
	"shop-api/internal/model"
	"shop-api/internal/service"
)

type OrderHandler struct {
	service *service.OrderService
}

func NewOrderHandler(service *service.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// List returns the orders of the email named in the query, which must match
// the caller's token.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthorized)
		return
	}

	orders, err := h.service.ListForOwner(r.Context(), claims, strings.TrimSpace(r.URL.Query().Get("email")))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", orders)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthorized)
		return
	}

	var doc model.Document
	if err := decodeJSON(w, r, &doc); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.service.Create(r.Context(), claims, doc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "", model.InsertResult{InsertedID: id})
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(r.Context(), claims, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", model.DeleteResult{DeletedCount: 1})
}
