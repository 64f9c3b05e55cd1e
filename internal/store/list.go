package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/orilam/kniyot/internal/model"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrDuplicateOrigin is returned when an insert would put the same catalog
// item on a list twice. The partial unique index on (list_id, catalog_item_id)
// enforces this across concurrent writers.
var ErrDuplicateOrigin = errors.New("catalog item already on list")

// ListStore manages lists and their active items.
type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

// --- List methods ---

func scanList(scanner interface{ Scan(...any) error }) (*model.List, error) {
	var l model.List
	err := scanner.Scan(&l.ID, &l.Slug, &l.Title, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const listCols = `id, slug, title, created_at`

func (s *ListStore) GetBySlug(slug string) (*model.List, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM lists WHERE slug = ?`, slug)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list by slug: %w", err)
	}
	return l, nil
}

func (s *ListStore) GetByID(id int64) (*model.List, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// Create inserts a list row. If the slug already exists the existing row is
// returned instead — first write wins, so concurrent self-provisioning of the
// same slug converges on one list.
func (s *ListStore) Create(slug, title string) (*model.List, error) {
	result, err := s.db.Exec(`INSERT INTO lists (slug, title) VALUES (?, ?)`, slug, title)
	if isUniqueViolation(err) {
		return s.GetBySlug(slug)
	}
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// --- Item methods ---

func scanListItem(scanner interface{ Scan(...any) error }) (*model.ListItem, error) {
	var item model.ListItem
	var categoryID, catalogItemID sql.NullInt64

	err := scanner.Scan(
		&item.ID, &item.ListID, &item.Name, &categoryID,
		&item.Quantity, &item.Comment, &catalogItemID, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		item.CategoryID = &categoryID.Int64
	}
	if catalogItemID.Valid {
		item.CatalogItemID = &catalogItemID.Int64
	}
	return &item, nil
}

const listItemCols = `id, list_id, name, category_id, quantity, comment, catalog_item_id, created_at`

func (s *ListStore) GetItemByID(id string) (*model.ListItem, error) {
	row := s.db.QueryRow(`SELECT `+listItemCols+` FROM list_items WHERE id = ?`, id)
	item, err := scanListItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *ListStore) ListItems(listID int64) ([]model.ListItem, error) {
	rows, err := s.db.Query(
		`SELECT `+listItemCols+` FROM list_items WHERE list_id = ? ORDER BY created_at ASC, id ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ListItem
	for rows.Next() {
		item, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// InsertItem assigns the creation timestamp and stores the row. An empty id
// gets a freshly generated one; a client-supplied placeholder id is kept, so
// the insert acknowledgment and the feed echo name the same row. Returns
// ErrDuplicateOrigin if the list already carries an item with the same
// catalog origin.
func (s *ListStore) InsertItem(id string, listID int64, name string, categoryID *int64, quantity, comment string, catalogItemID *int64) (*model.ListItem, error) {
	var catID, catalogID sql.NullInt64
	if categoryID != nil {
		catID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}
	if catalogItemID != nil {
		catalogID = sql.NullInt64{Int64: *catalogItemID, Valid: true}
	}

	if id == "" {
		id = uuid.NewString()
	}
	createdAt := time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO list_items (id, list_id, name, category_id, quantity, comment, catalog_item_id, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, listID, name, catID, quantity, comment, catalogID, createdAt,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateOrigin
	}
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return s.GetItemByID(id)
}

// UpdateItem replaces the row's mutable fields wholesale (last-write-wins).
func (s *ListStore) UpdateItem(id string, name string, categoryID *int64, quantity, comment string) (*model.ListItem, error) {
	var catID sql.NullInt64
	if categoryID != nil {
		catID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}

	_, err := s.db.Exec(
		`UPDATE list_items SET name = ?, category_id = ?, quantity = ?, comment = ? WHERE id = ?`,
		name, catID, quantity, comment, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ListStore) DeleteItem(id string) error {
	_, err := s.db.Exec(`DELETE FROM list_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}
