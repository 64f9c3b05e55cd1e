package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/orilam/kniyot/internal/database"
	"github.com/orilam/kniyot/internal/model"
)

const adminToken = "test-admin-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate hash: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, Config{AdminTokenHash: string(hash)}, logger)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON performs one request and decodes the response into out when non-nil.
func doJSON(t *testing.T, method, url, token string, body, out any) int {
	t.Helper()
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestItemLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var list model.List
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/lists", "", map[string]string{"slug": "rosa-family"}, &list); code != http.StatusCreated {
		t.Fatalf("create list status = %d", code)
	}
	if list.Title != "rosa-family" {
		t.Errorf("title = %q, want slug fallback", list.Title)
	}

	items := ts.URL + "/api/lists/1/items"

	catalogID := int64(3)
	var created model.ListItem
	body := map[string]any{"name": "חלב", "category_id": 3, "quantity": "2 ליטר", "catalog_item_id": catalogID}
	if code := doJSON(t, http.MethodPost, items, "", body, &created); code != http.StatusCreated {
		t.Fatalf("create item status = %d", code)
	}
	if created.ID == "" {
		t.Error("expected a server-assigned id")
	}

	// Same catalog origin again conflicts.
	if code := doJSON(t, http.MethodPost, items, "", body, nil); code != http.StatusConflict {
		t.Errorf("duplicate origin status = %d, want 409", code)
	}

	var updated model.ListItem
	update := map[string]any{"name": "חלב 3%", "quantity": "1 ליטר"}
	if code := doJSON(t, http.MethodPut, items+"/"+created.ID, "", update, &updated); code != http.StatusOK {
		t.Fatalf("update item status = %d", code)
	}
	if updated.Name != "חלב 3%" || updated.Quantity != "1 ליטר" {
		t.Errorf("update not applied: %+v", updated)
	}

	if code := doJSON(t, http.MethodDelete, items+"/"+created.ID, "", nil, nil); code != http.StatusNoContent {
		t.Errorf("delete item status = %d", code)
	}
	if code := doJSON(t, http.MethodDelete, items+"/"+created.ID, "", nil, nil); code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", code)
	}

	var remaining []model.ListItem
	if code := doJSON(t, http.MethodGet, items, "", nil, &remaining); code != http.StatusOK {
		t.Fatalf("list items status = %d", code)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty list, got %d items", len(remaining))
	}
}

func TestAdminRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	if code := doJSON(t, http.MethodGet, ts.URL+"/api/admin/pending", "", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", code)
	}
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/admin/pending", "wrong", nil, nil); code != http.StatusForbidden {
		t.Errorf("wrong token status = %d, want 403", code)
	}
}

func TestPendingReviewFlow(t *testing.T) {
	ts := newTestServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/api/lists", "", map[string]string{"slug": "rosa-family"}, nil)

	suggest := map[string]any{"name": "Tide 2in1", "quantity": "1"}
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/lists/1/pending", "", suggest, nil); code != http.StatusCreated {
		t.Fatalf("create pending status = %d", code)
	}
	doJSON(t, http.MethodPost, ts.URL+"/api/lists/1/pending", "", map[string]any{"name": "סבון כלים"}, nil)

	var open []model.PendingItem
	if code := doJSON(t, http.MethodGet, ts.URL+"/api/admin/pending", adminToken, nil, &open); code != http.StatusOK {
		t.Fatalf("list pending status = %d", code)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open suggestions, got %d", len(open))
	}

	// Approve the first with an edited name and an assigned category.
	approve := map[string]any{"name": "אבקת כביסה Tide", "category_id": 4}
	var item model.CatalogItem
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/admin/pending/1/approve", adminToken, approve, &item); code != http.StatusOK {
		t.Fatalf("approve status = %d", code)
	}
	if item.Name != "אבקת כביסה Tide" || item.CategoryID != 4 {
		t.Errorf("approved item = %+v", item)
	}

	// The promoted item is now in the shared catalog.
	var catalog []model.CatalogItem
	doJSON(t, http.MethodGet, ts.URL+"/api/catalog", "", nil, &catalog)
	found := false
	for _, ci := range catalog {
		if ci.ID == item.ID {
			found = true
		}
	}
	if !found {
		t.Error("approved item missing from catalog")
	}

	if code := doJSON(t, http.MethodPost, ts.URL+"/api/admin/pending/2/reject", adminToken, nil, nil); code != http.StatusOK {
		t.Fatalf("reject status = %d", code)
	}

	// Both are resolved; approving again is a 404.
	open = nil
	doJSON(t, http.MethodGet, ts.URL+"/api/admin/pending", adminToken, nil, &open)
	if len(open) != 0 {
		t.Errorf("expected empty review queue, got %d", len(open))
	}
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/admin/pending/1/approve", adminToken, nil, nil); code != http.StatusNotFound {
		t.Errorf("re-approve status = %d, want 404", code)
	}
}

func TestCategoryAdmin(t *testing.T) {
	ts := newTestServer(t)

	var created model.Category
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/admin/categories", adminToken, map[string]string{"name": "קפואים"}, &created); code != http.StatusCreated {
		t.Fatalf("create category status = %d", code)
	}

	var renamed model.Category
	if code := doJSON(t, http.MethodPut, ts.URL+"/api/admin/categories/6", adminToken, map[string]string{"name": "מוצרים קפואים"}, &renamed); code != http.StatusOK {
		t.Fatalf("rename category status = %d", code)
	}
	if renamed.Name != "מוצרים קפואים" {
		t.Errorf("renamed to %q", renamed.Name)
	}

	var ordered []model.Category
	if code := doJSON(t, http.MethodPost, ts.URL+"/api/admin/categories/6/move", adminToken, map[string]string{"direction": "up"}, &ordered); code != http.StatusOK {
		t.Fatalf("move category status = %d", code)
	}
	if len(ordered) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(ordered))
	}
	if ordered[4].ID != 6 {
		t.Errorf("expected category 6 second from last after move, got order %+v", ordered)
	}
}
