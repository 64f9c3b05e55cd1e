package store

import (
	"database/sql"
	"fmt"

	"github.com/orilam/kniyot/internal/model"
)

// CatalogStore manages the shared reference data: the category taxonomy and
// the curated base-item catalog.
type CatalogStore struct {
	db *sql.DB
}

func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// --- Category methods ---

func scanCategory(scanner interface{ Scan(...any) error }) (*model.Category, error) {
	var c model.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.SortOrder, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, name, sort_order, created_at`

func (s *CatalogStore) ListCategories() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *CatalogStore) GetCategoryByID(id int64) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CatalogStore) CreateCategory(name string) (*model.Category, error) {
	var maxOrder sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(sort_order) FROM categories`).Scan(&maxOrder); err != nil {
		return nil, fmt.Errorf("max sort order: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO categories (name, sort_order) VALUES (?, ?)`,
		name, maxOrder.Int64+1,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCategoryByID(id)
}

func (s *CatalogStore) RenameCategory(id int64, name string) (*model.Category, error) {
	_, err := s.db.Exec(`UPDATE categories SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return s.GetCategoryByID(id)
}

// MoveCategory swaps the category's sort_order with its neighbor in the given
// direction ("up" or "down"). Moving past either end is a no-op.
func (s *CatalogStore) MoveCategory(id int64, direction string) error {
	cat, err := s.GetCategoryByID(id)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("move category: not found")
	}

	var neighborQuery string
	switch direction {
	case "up":
		neighborQuery = `SELECT ` + categoryCols + ` FROM categories WHERE sort_order < ? ORDER BY sort_order DESC LIMIT 1`
	case "down":
		neighborQuery = `SELECT ` + categoryCols + ` FROM categories WHERE sort_order > ? ORDER BY sort_order ASC LIMIT 1`
	default:
		return fmt.Errorf("move category: bad direction %q", direction)
	}

	neighbor, err := scanCategory(s.db.QueryRow(neighborQuery, cat.SortOrder))
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("move category: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("move category: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE categories SET sort_order = ? WHERE id = ?`, neighbor.SortOrder, cat.ID); err != nil {
		return fmt.Errorf("move category: %w", err)
	}
	if _, err := tx.Exec(`UPDATE categories SET sort_order = ? WHERE id = ?`, cat.SortOrder, neighbor.ID); err != nil {
		return fmt.Errorf("move category: %w", err)
	}
	return tx.Commit()
}

// --- Catalog item methods ---

func scanCatalogItem(scanner interface{ Scan(...any) error }) (*model.CatalogItem, error) {
	var item model.CatalogItem
	err := scanner.Scan(&item.ID, &item.Name, &item.CategoryID, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const catalogItemCols = `id, name, category_id, created_at`

func (s *CatalogStore) ListCatalogItems() ([]model.CatalogItem, error) {
	rows, err := s.db.Query(`SELECT ` + catalogItemCols + ` FROM catalog_items ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	var items []model.CatalogItem
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *CatalogStore) CreateCatalogItem(name string, categoryID int64) (*model.CatalogItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO catalog_items (name, category_id) VALUES (?, ?)`,
		name, categoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert catalog item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+catalogItemCols+` FROM catalog_items WHERE id = ?`, id)
	item, err := scanCatalogItem(row)
	if err != nil {
		return nil, fmt.Errorf("get catalog item: %w", err)
	}
	return item, nil
}
