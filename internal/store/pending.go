package store

import (
	"database/sql"
	"fmt"

	"github.com/orilam/kniyot/internal/model"
)

// PendingStore manages shopper-proposed catalog additions awaiting review.
type PendingStore struct {
	db *sql.DB
}

func NewPendingStore(db *sql.DB) *PendingStore {
	return &PendingStore{db: db}
}

func scanPending(scanner interface{ Scan(...any) error }) (*model.PendingItem, error) {
	var p model.PendingItem
	var categoryID sql.NullInt64

	err := scanner.Scan(&p.ID, &p.ListID, &p.Name, &categoryID, &p.Quantity, &p.Comment, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.Int64
	}
	return &p, nil
}

const pendingCols = `id, list_id, name, category_id, quantity, comment, status, created_at`

func (s *PendingStore) Create(listID int64, name string, categoryID *int64, quantity, comment string) (*model.PendingItem, error) {
	var catID sql.NullInt64
	if categoryID != nil {
		catID = sql.NullInt64{Int64: *categoryID, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO pending_items (list_id, name, category_id, quantity, comment) VALUES (?, ?, ?, ?, ?)`,
		listID, name, catID, quantity, comment,
	)
	if err != nil {
		return nil, fmt.Errorf("insert pending item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PendingStore) GetByID(id int64) (*model.PendingItem, error) {
	row := s.db.QueryRow(`SELECT `+pendingCols+` FROM pending_items WHERE id = ?`, id)
	p, err := scanPending(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pending item: %w", err)
	}
	return p, nil
}

// ListOpen returns unresolved suggestions, oldest first.
func (s *PendingStore) ListOpen() ([]model.PendingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+pendingCols+` FROM pending_items WHERE status = ? ORDER BY created_at ASC, id ASC`,
		model.PendingOpen,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending items: %w", err)
	}
	defer rows.Close()

	var items []model.PendingItem
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending item: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (s *PendingStore) SetStatus(id int64, status string) (*model.PendingItem, error) {
	_, err := s.db.Exec(`UPDATE pending_items SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("set pending status: %w", err)
	}
	return s.GetByID(id)
}
