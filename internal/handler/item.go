package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/orilam/kniyot/internal/feed"
	"github.com/orilam/kniyot/internal/model"
	"github.com/orilam/kniyot/internal/store"
)

// ItemHandler manages the active items of a list. Every successful mutation
// is echoed onto the list's change feed so other clients reconcile it.
type ItemHandler struct {
	listStore    *store.ListStore
	pendingStore *store.PendingStore
	hub          *feed.Hub
	logger       *slog.Logger
}

func NewItemHandler(ls *store.ListStore, ps *store.PendingStore, hub *feed.Hub, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{listStore: ls, pendingStore: ps, hub: hub, logger: logger}
}

func (h *ItemHandler) broadcast(listID int64, ev feed.Event) {
	if h.hub != nil {
		h.hub.Broadcast(listID, ev)
	}
}

type itemRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CategoryID    *int64 `json:"category_id"`
	Quantity      string `json:"quantity"`
	Comment       string `json:"comment"`
	CatalogItemID *int64 `json:"catalog_item_id"`
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r, "list_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list_id"})
		return
	}

	items, err := h.listStore.ListItems(listID)
	if err != nil {
		h.logger.Error("list items", "list_id", listID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.ListItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r, "list_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list_id"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	item, err := h.listStore.InsertItem(strings.TrimSpace(req.ID), listID, req.Name, req.CategoryID, strings.TrimSpace(req.Quantity), strings.TrimSpace(req.Comment), req.CatalogItemID)
	if errors.Is(err, store.ErrDuplicateOrigin) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "catalog item already on list"})
		return
	}
	if err != nil {
		h.logger.Error("create item", "list_id", listID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	h.broadcast(listID, feed.Event{Kind: feed.EventInsert, Item: item})
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r, "list_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list_id"})
		return
	}

	id := r.PathValue("item_id")
	existing, err := h.listStore.GetItemByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if existing == nil || existing.ListID != listID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	item, err := h.listStore.UpdateItem(id, req.Name, req.CategoryID, strings.TrimSpace(req.Quantity), strings.TrimSpace(req.Comment))
	if err != nil {
		h.logger.Error("update item", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}

	h.broadcast(listID, feed.Event{Kind: feed.EventUpdate, Item: item})
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r, "list_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list_id"})
		return
	}

	id := r.PathValue("item_id")
	existing, err := h.listStore.GetItemByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if existing == nil || existing.ListID != listID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	if err := h.listStore.DeleteItem(id); err != nil {
		h.logger.Error("delete item", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.broadcast(listID, feed.Event{Kind: feed.EventDelete, ItemID: id})
	w.WriteHeader(http.StatusNoContent)
}

// CreatePending records a shopper's suggestion to add an item to the
// permanent catalog. Best-effort from the client's point of view.
func (h *ItemHandler) CreatePending(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r, "list_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid list_id"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	p, err := h.pendingStore.Create(listID, req.Name, req.CategoryID, strings.TrimSpace(req.Quantity), strings.TrimSpace(req.Comment))
	if err != nil {
		h.logger.Error("create pending item", "list_id", listID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create pending item"})
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
