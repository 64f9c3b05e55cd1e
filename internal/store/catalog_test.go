package store

import (
	"testing"

	"github.com/orilam/kniyot/internal/database"
)

func setupTestDB(t *testing.T) (*CatalogStore, *ListStore, *PendingStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewCatalogStore(db), NewListStore(db), NewPendingStore(db)
}

func TestCategorySeedData(t *testing.T) {
	cs, _, _ := setupTestDB(t)

	categories, err := cs.ListCategories()
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 5 {
		t.Fatalf("expected 5 seed categories, got %d", len(categories))
	}

	expected := []string{"מוצרי יסוד", "פירות וירקות", "מוצרי חלב וביצים", "חומרי ניקוי", "שתייה"}
	for i, name := range expected {
		if categories[i].Name != name {
			t.Errorf("category[%d].Name = %q, want %q", i, categories[i].Name, name)
		}
	}
}

func TestCatalogSeedData(t *testing.T) {
	cs, _, _ := setupTestDB(t)

	items, err := cs.ListCatalogItems()
	if err != nil {
		t.Fatalf("list catalog items: %v", err)
	}
	if len(items) != 7 {
		t.Fatalf("expected 7 seed catalog items, got %d", len(items))
	}
	if items[2].Name != "חלב" {
		t.Errorf("item[2].Name = %q, want %q", items[2].Name, "חלב")
	}
	if items[2].CategoryID != 3 {
		t.Errorf("item[2].CategoryID = %d, want 3", items[2].CategoryID)
	}
}

func TestCreateAndRenameCategory(t *testing.T) {
	cs, _, _ := setupTestDB(t)

	c, err := cs.CreateCategory("קפואים")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if c.Name != "קפואים" {
		t.Errorf("name = %q, want %q", c.Name, "קפואים")
	}
	if c.SortOrder != 6 {
		t.Errorf("sort order = %d, want 6 (appended last)", c.SortOrder)
	}

	renamed, err := cs.RenameCategory(c.ID, "מוצרים קפואים")
	if err != nil {
		t.Fatalf("rename category: %v", err)
	}
	if renamed.Name != "מוצרים קפואים" {
		t.Errorf("renamed name = %q, want %q", renamed.Name, "מוצרים קפואים")
	}
}

func TestMoveCategory(t *testing.T) {
	cs, _, _ := setupTestDB(t)

	before, _ := cs.ListCategories()

	// Move the second category up: it should swap with the first.
	if err := cs.MoveCategory(before[1].ID, "up"); err != nil {
		t.Fatalf("move up: %v", err)
	}
	after, _ := cs.ListCategories()
	if after[0].ID != before[1].ID || after[1].ID != before[0].ID {
		t.Errorf("expected first two categories swapped, got %v then %v", after[0].Name, after[1].Name)
	}
}

func TestMoveCategoryAtEdge(t *testing.T) {
	cs, _, _ := setupTestDB(t)

	before, _ := cs.ListCategories()

	// Moving the first category up has no neighbor to swap with.
	if err := cs.MoveCategory(before[0].ID, "up"); err != nil {
		t.Fatalf("move up at edge: %v", err)
	}
	after, _ := cs.ListCategories()
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Fatalf("order changed at %d: got %d, want %d", i, after[i].ID, before[i].ID)
		}
	}
}

func TestMoveCategoryBadDirection(t *testing.T) {
	cs, _, _ := setupTestDB(t)

	before, _ := cs.ListCategories()
	if err := cs.MoveCategory(before[0].ID, "sideways"); err == nil {
		t.Fatal("expected error for bad direction")
	}
}

func TestCreateCatalogItem(t *testing.T) {
	cs, _, _ := setupTestDB(t)

	item, err := cs.CreateCatalogItem("שמן זית", 1)
	if err != nil {
		t.Fatalf("create catalog item: %v", err)
	}
	if item.Name != "שמן זית" {
		t.Errorf("name = %q, want %q", item.Name, "שמן זית")
	}
	if item.CategoryID != 1 {
		t.Errorf("category id = %d, want 1", item.CategoryID)
	}

	items, _ := cs.ListCatalogItems()
	if len(items) != 8 {
		t.Errorf("expected 8 catalog items after create, got %d", len(items))
	}
}
