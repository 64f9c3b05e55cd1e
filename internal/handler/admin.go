package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/orilam/kniyot/internal/model"
	"github.com/orilam/kniyot/internal/store"
)

// AdminHandler covers the admin view: the pending-suggestion review queue and
// category taxonomy maintenance.
type AdminHandler struct {
	catalogStore *store.CatalogStore
	pendingStore *store.PendingStore
	logger       *slog.Logger
}

func NewAdminHandler(cs *store.CatalogStore, ps *store.PendingStore, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{catalogStore: cs, pendingStore: ps, logger: logger}
}

func (h *AdminHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	items, err := h.pendingStore.ListOpen()
	if err != nil {
		h.logger.Error("list pending", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list pending items"})
		return
	}
	if items == nil {
		items = []model.PendingItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// ApprovePending promotes a suggestion into the permanent catalog. The name
// and category may be edited at approval time; empty fields fall back to the
// proposed values.
func (h *AdminHandler) ApprovePending(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	pending, err := h.pendingStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get pending item"})
		return
	}
	if pending == nil || pending.Status != model.PendingOpen {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "pending item not found"})
		return
	}

	var req struct {
		Name       string `json:"name"`
		CategoryID *int64 `json:"category_id"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = pending.Name
	}
	categoryID := req.CategoryID
	if categoryID == nil {
		categoryID = pending.CategoryID
	}
	if categoryID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category_id is required"})
		return
	}

	item, err := h.catalogStore.CreateCatalogItem(name, *categoryID)
	if err != nil {
		h.logger.Error("approve pending", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create catalog item"})
		return
	}

	if _, err := h.pendingStore.SetStatus(id, model.PendingApproved); err != nil {
		h.logger.Error("mark pending approved", "id", id, "error", err)
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *AdminHandler) RejectPending(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	pending, err := h.pendingStore.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get pending item"})
		return
	}
	if pending == nil || pending.Status != model.PendingOpen {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "pending item not found"})
		return
	}

	p, err := h.pendingStore.SetStatus(id, model.PendingRejected)
	if err != nil {
		h.logger.Error("reject pending", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to reject pending item"})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	c, err := h.catalogStore.CreateCategory(req.Name)
	if err != nil {
		h.logger.Error("create category", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create category"})
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *AdminHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.catalogStore.GetCategoryByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get category"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	c, err := h.catalogStore.RenameCategory(id, req.Name)
	if err != nil {
		h.logger.Error("rename category", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to rename category"})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *AdminHandler) MoveCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Direction != "up" && req.Direction != "down" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "direction must be up or down"})
		return
	}

	if err := h.catalogStore.MoveCategory(id, req.Direction); err != nil {
		h.logger.Error("move category", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to move category"})
		return
	}

	categories, err := h.catalogStore.ListCategories()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list categories"})
		return
	}
	writeJSON(w, http.StatusOK, categories)
}
