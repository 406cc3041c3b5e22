package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-entry-board/internal/middleware"
	"go-entry-board/internal/model"
	"go-entry-board/internal/service"
	"go-entry-board/pkg/apierror"
)

type WhitelistHandler struct {
	service *service.WhitelistService
}

func NewWhitelistHandler(service *service.WhitelistService) *WhitelistHandler {
	return &WhitelistHandler{service: service}
}

func (h *WhitelistHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.MissingToken())
		return
	}

	var payload model.AddWhitelistRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.service.Add(r.Context(), *claims, payload.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, entry, nil)
}

func (h *WhitelistHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.WhitelistEntry{}
	}

	writeSuccess(w, http.StatusOK, entries, nil)
}

func (h *WhitelistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.MissingToken())
		return
	}

	username := chi.URLParam(r, "username")
	if err := h.service.Remove(r.Context(), *claims, username); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Whitelist entry removed", "username": username}, nil)
}
