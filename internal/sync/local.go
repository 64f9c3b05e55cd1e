package sync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orilam/kniyot/internal/feed"
	"github.com/orilam/kniyot/internal/model"
)

// localBackend simulates the shared backend in process memory. It is the sole
// owner of its items, writes apply synchronously, and there is no feed — the
// insert acknowledgment path is the only delivery path.
type localBackend struct {
	mu     sync.Mutex
	items  []model.ListItem
	now    func() time.Time
	logger *slog.Logger
}

func newLocalBackend(seed []model.ListItem, logger *slog.Logger) *localBackend {
	return &localBackend{
		items:  append([]model.ListItem(nil), seed...),
		now:    time.Now,
		logger: logger,
	}
}

// demoSeed returns the sample rows an offline session starts with, so the
// view is non-empty.
func demoSeed(now time.Time) []model.ListItem {
	milk := int64(3)
	tomatoes := int64(5)
	dairy := int64(3)
	produce := int64(2)
	return []model.ListItem{
		{
			ID:            uuid.NewString(),
			Name:          "חלב",
			CategoryID:    &dairy,
			Quantity:      "2 ליטר",
			Comment:       "אם יש במבצע 1+1 אז לקנות",
			CatalogItemID: &milk,
			CreatedAt:     now.Add(-2 * time.Minute),
		},
		{
			ID:            uuid.NewString(),
			Name:          "עגבניות",
			CategoryID:    &produce,
			Quantity:      "6",
			CatalogItemID: &tomatoes,
			CreatedAt:     now.Add(-time.Minute),
		},
	}
}

func (b *localBackend) Resolve(ctx context.Context, slug string) error {
	return nil
}

func (b *localBackend) LoadItems(ctx context.Context) ([]model.ListItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.ListItem(nil), b.items...), nil
}

func (b *localBackend) InsertItem(ctx context.Context, d Draft) (*model.ListItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if d.CatalogItemID != nil {
		for _, item := range b.items {
			if item.CatalogItemID != nil && *item.CatalogItemID == *d.CatalogItemID {
				return nil, ErrDuplicateOrigin
			}
		}
	}

	id := d.ID
	if id == "" {
		id = uuid.NewString()
	}
	item := model.ListItem{
		ID:            id,
		Name:          d.Name,
		CategoryID:    d.CategoryID,
		Quantity:      d.Quantity,
		Comment:       d.Comment,
		CatalogItemID: d.CatalogItemID,
		CreatedAt:     b.now(),
	}
	b.items = append(b.items, item)
	return &item, nil
}

func (b *localBackend) DeleteItem(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (b *localBackend) Suggest(ctx context.Context, d Draft) error {
	// Nowhere to send it without a shared backend.
	b.logger.Debug("dropping catalog suggestion in offline mode", "name", d.Name)
	return nil
}

func (b *localBackend) Subscribe(ctx context.Context) (<-chan feed.Event, error) {
	return nil, nil
}

func (b *localBackend) Close() error {
	return nil
}
