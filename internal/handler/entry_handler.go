package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-entry-board/internal/middleware"
	"go-entry-board/internal/model"
	"go-entry-board/internal/service"
	"go-entry-board/pkg/apierror"
)

type EntryHandler struct {
	service *service.EntryService
}

func NewEntryHandler(service *service.EntryService) *EntryHandler {
	return &EntryHandler{service: service}
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.MissingToken())
		return
	}

	var payload model.CreateEntryRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	id, err := h.service.Create(r.Context(), *claims, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, model.CreateEntryResponse{Message: "Entry created", EntryID: id}, nil)
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.Entry{}
	}

	writeSuccess(w, http.StatusOK, entries, nil)
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.MissingToken())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), *claims, id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Entry deleted", "entryId": id}, nil)
}
