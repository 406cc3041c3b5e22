package handler

import (
	"net/http"

	"go-entry-board/internal/service"
)

type FeedHandler struct {
	service *service.FeedService
}

func NewFeedHandler(service *service.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) Page(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseIntOrDefault(query.Get("page"), 1)
	limit := parseIntOrDefault(query.Get("limit"), service.DefaultFeedLimit)

	result, err := h.service.Page(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	meta := result.Meta
	writeSuccess(w, http.StatusOK, result.Items, &meta)
}
