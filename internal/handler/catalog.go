package handler

import (
	"net/http"

	"github.com/orilam/kniyot/internal/model"
	"github.com/orilam/kniyot/internal/store"
)

// CatalogHandler serves the read-only reference data shoppers browse: the
// category taxonomy and the curated base-item catalog.
type CatalogHandler struct {
	catalogStore *store.CatalogStore
}

func NewCatalogHandler(cs *store.CatalogStore) *CatalogHandler {
	return &CatalogHandler{catalogStore: cs}
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogStore.ListCategories()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list categories"})
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) ListCatalogItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalogStore.ListCatalogItems()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list catalog items"})
		return
	}
	if items == nil {
		items = []model.CatalogItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
