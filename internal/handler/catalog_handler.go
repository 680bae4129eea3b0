package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shop-api/internal/model"
	"shop-api/internal/service"
)

// CatalogHandler exposes one catalog collection (products or flash sales).
type CatalogHandler struct {
	service *service.CatalogService
}

func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", docs)
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", doc)
}

func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var doc model.Document
	if err := decodeJSON(w, r, &doc); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.service.Create(r.Context(), doc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "", model.InsertResult{InsertedID: id})
}

func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", model.DeleteResult{DeletedCount: 1})
}
