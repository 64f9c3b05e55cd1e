package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/orilam/kniyot/internal/store"
)

// ListHandler resolves slugs to list rows. Lists are self-provisioning: a
// client that finds no row for its slug creates one, and concurrent creates
// of the same slug converge on the first row written.
type ListHandler struct {
	listStore *store.ListStore
	logger    *slog.Logger
}

func NewListHandler(ls *store.ListStore, logger *slog.Logger) *ListHandler {
	return &ListHandler{listStore: ls, logger: logger}
}

func (h *ListHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "slug is required"})
		return
	}

	list, err := h.listStore.GetBySlug(slug)
	if err != nil {
		h.logger.Error("get list by slug", "slug", slug, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get list"})
		return
	}
	if list == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "list not found"})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slug  string `json:"slug"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "slug is required"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = req.Slug
	}

	list, err := h.listStore.Create(req.Slug, req.Title)
	if err != nil {
		h.logger.Error("create list", "slug", req.Slug, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create list"})
		return
	}
	writeJSON(w, http.StatusCreated, list)
}
