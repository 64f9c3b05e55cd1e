package store

import (
	"errors"
	"testing"
)

func TestListResolveCreate(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	got, err := ls.GetBySlug("rosa-family")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got != nil {
		t.Fatal("expected no list before create")
	}

	created, err := ls.Create("rosa-family", "משפחה: rosa-family")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if created.Slug != "rosa-family" {
		t.Errorf("slug = %q, want %q", created.Slug, "rosa-family")
	}
	if created.Title != "משפחה: rosa-family" {
		t.Errorf("title = %q, want %q", created.Title, "משפחה: rosa-family")
	}

	got, err = ls.GetBySlug("rosa-family")
	if err != nil {
		t.Fatalf("get by slug after create: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Fatal("expected lookup to find the created list")
	}
}

func TestListCreateFirstWriteWins(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	first, err := ls.Create("cohen-family", "משפחת כהן")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	second, err := ls.Create("cohen-family", "another title")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected second create to return the existing list, got id %d want %d", second.ID, first.ID)
	}
	if second.Title != "משפחת כהן" {
		t.Errorf("title = %q, want the first writer's title", second.Title)
	}
}

func TestInsertItem(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	list, _ := ls.Create("rosa-family", "משפחה: rosa-family")

	dairy := int64(3)
	milk := int64(3)
	item, err := ls.InsertItem("", list.ID, "חלב", &dairy, "2 ליטר", "אם יש במבצע", &milk)
	if err != nil {
		t.Fatalf("insert item: %v", err)
	}
	if item.ID == "" {
		t.Error("expected a generated id")
	}
	if item.Name != "חלב" {
		t.Errorf("name = %q, want %q", item.Name, "חלב")
	}
	if item.CategoryID == nil || *item.CategoryID != 3 {
		t.Errorf("category id = %v, want 3", item.CategoryID)
	}
	if item.CatalogItemID == nil || *item.CatalogItemID != 3 {
		t.Errorf("catalog item id = %v, want 3", item.CatalogItemID)
	}
	if item.CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}
}

func TestInsertItemKeepsClientID(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	list, _ := ls.Create("rosa-family", "t")

	item, err := ls.InsertItem("client-placeholder-1", list.ID, "לחם", nil, "", "", nil)
	if err != nil {
		t.Fatalf("insert item: %v", err)
	}
	if item.ID != "client-placeholder-1" {
		t.Errorf("id = %q, want the client-supplied placeholder", item.ID)
	}
}

func TestInsertItemDuplicateOrigin(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	list, _ := ls.Create("rosa-family", "t")

	milk := int64(3)
	if _, err := ls.InsertItem("", list.ID, "חלב", nil, "", "", &milk); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err := ls.InsertItem("", list.ID, "חלב", nil, "", "", &milk)
	if !errors.Is(err, ErrDuplicateOrigin) {
		t.Fatalf("expected ErrDuplicateOrigin, got %v", err)
	}

	items, _ := ls.ListItems(list.ID)
	if len(items) != 1 {
		t.Errorf("expected 1 item after rejected duplicate, got %d", len(items))
	}
}

func TestInsertItemDuplicateOriginOtherList(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	a, _ := ls.Create("a", "a")
	b, _ := ls.Create("b", "b")

	milk := int64(3)
	if _, err := ls.InsertItem("", a.ID, "חלב", nil, "", "", &milk); err != nil {
		t.Fatalf("insert list a: %v", err)
	}
	// Uniqueness is per list; the same catalog item on another list is fine.
	if _, err := ls.InsertItem("", b.ID, "חלב", nil, "", "", &milk); err != nil {
		t.Fatalf("insert list b: %v", err)
	}
}

func TestInsertManualDuplicatesAllowed(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	list, _ := ls.Create("rosa-family", "t")

	if _, err := ls.InsertItem("", list.ID, "משהו טעים", nil, "", "", nil); err != nil {
		t.Fatalf("first manual insert: %v", err)
	}
	if _, err := ls.InsertItem("", list.ID, "משהו טעים", nil, "", "", nil); err != nil {
		t.Fatalf("second manual insert: %v", err)
	}

	items, _ := ls.ListItems(list.ID)
	if len(items) != 2 {
		t.Errorf("expected 2 manual items, got %d", len(items))
	}
}

func TestListItemsOrder(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	list, _ := ls.Create("rosa-family", "t")

	first, _ := ls.InsertItem("", list.ID, "ראשון", nil, "", "", nil)
	second, _ := ls.InsertItem("", list.ID, "שני", nil, "", "", nil)

	items, err := ls.ListItems(list.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != first.ID || items[1].ID != second.ID {
		t.Error("expected items in creation order")
	}
}

func TestUpdateItem(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	list, _ := ls.Create("rosa-family", "t")
	item, _ := ls.InsertItem("", list.ID, "חלב", nil, "1", "", nil)

	dairy := int64(3)
	updated, err := ls.UpdateItem(item.ID, "חלב 3%", &dairy, "2", "הערה")
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Name != "חלב 3%" {
		t.Errorf("name = %q, want %q", updated.Name, "חלב 3%")
	}
	if updated.CategoryID == nil || *updated.CategoryID != 3 {
		t.Errorf("category id = %v, want 3", updated.CategoryID)
	}
	if updated.Quantity != "2" {
		t.Errorf("quantity = %q, want %q", updated.Quantity, "2")
	}
}

func TestDeleteItem(t *testing.T) {
	_, ls, _ := setupTestDB(t)

	list, _ := ls.Create("rosa-family", "t")
	item, _ := ls.InsertItem("", list.ID, "חלב", nil, "", "", nil)

	if err := ls.DeleteItem(item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	got, err := ls.GetItemByID(item.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected item gone after delete")
	}

	// Deleting an absent id is not an error.
	if err := ls.DeleteItem(item.ID); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}
