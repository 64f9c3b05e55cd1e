package sync

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/orilam/kniyot/internal/catalog"
	"github.com/orilam/kniyot/internal/feed"
	"github.com/orilam/kniyot/internal/model"
)

// Mode names where a session's data lives. It is fixed when the session
// opens; a failed list resolution downgrades the session to offline so mode
// and behavior never disagree.
type Mode string

const (
	ModeLive    Mode = "live"
	ModeOffline Mode = "offline"
)

// RetryNotice is the generic user-facing message for any failed write.
const RetryNotice = "אירעה שגיאה, נסו שוב"

const suggestTimeout = 5 * time.Second

// Config configures an Engine.
type Config struct {
	// ServerURL is the shared backend's base URL. Empty selects offline
	// mode.
	ServerURL string

	// HTTPClient overrides the default client used in live mode.
	HTTPClient *http.Client

	// Seed preloads an offline session's items. nil selects the built-in
	// demo rows; an empty non-nil slice starts the session empty.
	Seed []model.ListItem

	// Notify receives the generic retry notice when a write fails. May be
	// nil.
	Notify func(message string)

	// OnChange fires after any change to the active collection, so the
	// interaction layer can re-render. Called from the mutating goroutine;
	// keep it quick. May be nil.
	OnChange func()

	Logger *slog.Logger
}

// Engine is the single authority over one list session: it loads the initial
// snapshot, reconciles feed events into the collection, and routes mutation
// intents to the session's backend. The interaction layer only reads
// snapshots and calls intent methods.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	mu        sync.Mutex
	state     *State
	animating map[string]struct{}

	catalog *catalog.Catalog
	backend Backend
	mode    Mode
	slug    string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an Engine. Call Open to start a list session.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:       cfg,
		logger:    logger.With("component", "sync"),
		state:     NewState(nil),
		animating: make(map[string]struct{}),
		catalog:   catalog.Default(),
	}
}

// Open starts a session for the given list slug, tearing down any previous
// session first. It never fails: every load error degrades — defaults for
// the catalog, offline for a failed list resolution, an empty collection for
// a failed item load.
func (e *Engine) Open(ctx context.Context, slug string) {
	e.Close()
	e.slug = slug

	cat := catalog.Default()
	var backend Backend
	mode := ModeOffline

	if e.cfg.ServerURL == "" {
		seed := e.cfg.Seed
		if seed == nil {
			seed = demoSeed(time.Now())
		}
		backend = newLocalBackend(seed, e.logger)
	} else {
		lb := newLiveBackend(e.cfg.ServerURL, e.cfg.HTTPClient, e.logger)
		if live, err := lb.Categories(ctx); err != nil {
			e.logger.Warn("categories fetch failed, keeping defaults", "error", err)
		} else {
			cat = live
		}
		if err := lb.Resolve(ctx, slug); err != nil {
			e.logger.Warn("list resolution failed, downgrading to offline", "slug", slug, "error", err)
			backend = newLocalBackend([]model.ListItem{}, e.logger)
		} else {
			backend = lb
			mode = ModeLive
		}
	}

	e.catalog = cat
	e.backend = backend
	e.mode = mode

	items, err := backend.LoadItems(ctx)
	if err != nil {
		e.logger.Warn("initial item load failed", "slug", slug, "error", err)
		items = nil
	}
	e.mu.Lock()
	e.state = NewState(items)
	e.mu.Unlock()

	sessionCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	events, err := backend.Subscribe(sessionCtx)
	if err != nil {
		e.logger.Warn("feed subscription failed", "slug", slug, "error", err)
		return
	}
	if events == nil {
		return
	}
	e.wg.Add(1)
	go e.reconcileLoop(events)
}

// Close tears the session down: the feed subscription is closed and drained
// before Close returns, so no stale event can reach a future session's state.
func (e *Engine) Close() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.wg.Wait()
	if e.backend != nil {
		e.backend.Close()
		e.backend = nil
	}
}

// Mode reports where the session's data lives.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Slug returns the list identifier the session was opened with.
func (e *Engine) Slug() string {
	return e.slug
}

// Catalog returns the session's reference data.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Items returns a snapshot of the active collection in creation order.
func (e *Engine) Items() []model.ListItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Items()
}

// IsAnimating reports whether the item is mid-purchase; presentation only.
func (e *Engine) IsAnimating(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.animating[id]
	return ok
}

// AddFromCatalog puts a catalog item on the list. Adding an item whose
// catalog entry is already on the list is a silent no-op; the backend
// enforces the same rule, so a race between two shoppers rejects the second
// write with the generic retry notice.
func (e *Engine) AddFromCatalog(ctx context.Context, item model.CatalogItem, quantity, comment string) {
	e.mu.Lock()
	dup := e.state.HasCatalogOrigin(item.ID)
	e.mu.Unlock()
	if dup {
		return
	}

	categoryID := item.CategoryID
	e.insert(ctx, Draft{
		ID:            e.newID(),
		Name:          item.Name,
		CategoryID:    &categoryID,
		Quantity:      strings.TrimSpace(quantity),
		Comment:       strings.TrimSpace(comment),
		CatalogItemID: &item.ID,
	})
}

// AddManual puts a freeform item on the list. An empty trimmed name is a
// no-op. With suggestToBase the item is also proposed for the permanent
// catalog, fire-and-forget.
func (e *Engine) AddManual(ctx context.Context, name string, categoryID *int64, quantity, comment string, suggestToBase bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	d := Draft{
		ID:         e.newID(),
		Name:       name,
		CategoryID: categoryID,
		Quantity:   strings.TrimSpace(quantity),
		Comment:    strings.TrimSpace(comment),
	}

	if suggestToBase {
		backend := e.backend
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			sctx, cancel := context.WithTimeout(context.Background(), suggestTimeout)
			defer cancel()
			if err := backend.Suggest(sctx, d); err != nil {
				e.logger.Warn("catalog suggestion failed", "name", d.Name, "error", err)
			}
		}()
	}

	e.insert(ctx, d)
}

// MarkBought removes the item from the active collection — purchased items
// leave no history. The animating marker is held for presentation while the
// delete is in flight and cleared once it resolves, success or not.
func (e *Engine) MarkBought(ctx context.Context, id string) {
	e.mu.Lock()
	if _, ok := e.state.Get(id); !ok {
		e.mu.Unlock()
		return
	}
	e.animating[id] = struct{}{}
	e.mu.Unlock()

	err := e.backend.DeleteItem(ctx, id)

	e.mu.Lock()
	delete(e.animating, id)
	removed := false
	if err == nil {
		removed = e.state.Remove(id)
	}
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("delete failed", "id", id, "error", err)
		e.notify()
		return
	}
	if removed {
		e.changed()
	}
}

func (e *Engine) insert(ctx context.Context, d Draft) {
	stored, err := e.backend.InsertItem(ctx, d)
	if err != nil {
		if errors.Is(err, ErrDuplicateOrigin) {
			e.logger.Debug("insert rejected by backend, duplicate origin", "name", d.Name)
		} else {
			e.logger.Warn("insert failed", "name", d.Name, "error", err)
		}
		e.notify()
		return
	}

	// The acknowledgment path; the feed echo of the same row deduplicates
	// against it by id.
	e.mu.Lock()
	inserted := e.state.Insert(*stored)
	e.mu.Unlock()
	if inserted {
		e.changed()
	}
}

func (e *Engine) reconcileLoop(events <-chan feed.Event) {
	defer e.wg.Done()
	for ev := range events {
		e.apply(ev)
	}
}

// apply folds one feed event into the collection, in arrival order.
func (e *Engine) apply(ev feed.Event) {
	e.mu.Lock()
	changed := false
	switch ev.Kind {
	case feed.EventInsert:
		if ev.Item != nil {
			changed = e.state.Insert(*ev.Item)
		}
	case feed.EventUpdate:
		if ev.Item != nil {
			changed = e.state.Replace(*ev.Item)
			if !changed {
				e.logger.Debug("update for unknown item", "id", ev.Item.ID)
			}
		}
	case feed.EventDelete:
		changed = e.state.Remove(ev.ID())
	default:
		e.logger.Warn("unknown feed event kind", "kind", ev.Kind)
	}
	e.mu.Unlock()

	if changed {
		e.changed()
	}
}

func (e *Engine) newID() string {
	return uuid.NewString()
}

func (e *Engine) notify() {
	if e.cfg.Notify != nil {
		e.cfg.Notify(RetryNotice)
	}
}

func (e *Engine) changed() {
	if e.cfg.OnChange != nil {
		e.cfg.OnChange()
	}
}
