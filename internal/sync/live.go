package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ws "github.com/coder/websocket"
	"github.com/orilam/kniyot/internal/catalog"
	"github.com/orilam/kniyot/internal/feed"
	"github.com/orilam/kniyot/internal/model"
)

var errNotFound = errors.New("not found")

const feedBufferSize = 16

// liveBackend talks to the shared kniyotd server: HTTP for loads and writes,
// a websocket subscription for the change feed.
type liveBackend struct {
	baseURL string
	httpc   *http.Client
	listID  int64
	logger  *slog.Logger
}

func newLiveBackend(baseURL string, httpc *http.Client, logger *slog.Logger) *liveBackend {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &liveBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
		logger:  logger,
	}
}

// Categories fetches the taxonomy and base items. The engine treats failure
// (or an empty taxonomy) as non-fatal and keeps its defaults.
func (b *liveBackend) Categories(ctx context.Context) (*catalog.Catalog, error) {
	var categories []model.Category
	if err := b.do(ctx, http.MethodGet, "/api/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, errors.New("fetch categories: empty taxonomy")
	}

	var items []model.CatalogItem
	if err := b.do(ctx, http.MethodGet, "/api/catalog", nil, &items); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return catalog.New(categories, items), nil
}

// Resolve looks the slug up and creates the list when absent, deriving the
// title from the slug. Safe to race: the server converges concurrent creates
// of one slug onto the first row written.
func (b *liveBackend) Resolve(ctx context.Context, slug string) error {
	var list model.List
	err := b.do(ctx, http.MethodGet, "/api/lists/"+url.PathEscape(slug), nil, &list)
	if errors.Is(err, errNotFound) {
		body := map[string]string{"slug": slug, "title": "משפחה: " + slug}
		err = b.do(ctx, http.MethodPost, "/api/lists", body, &list)
	}
	if err != nil {
		return fmt.Errorf("resolve list %q: %w", slug, err)
	}
	b.listID = list.ID
	return nil
}

func (b *liveBackend) itemsPath() string {
	return "/api/lists/" + strconv.FormatInt(b.listID, 10) + "/items"
}

func (b *liveBackend) LoadItems(ctx context.Context) ([]model.ListItem, error) {
	var items []model.ListItem
	if err := b.do(ctx, http.MethodGet, b.itemsPath(), nil, &items); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return items, nil
}

type itemPayload struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	CategoryID    *int64 `json:"category_id"`
	Quantity      string `json:"quantity"`
	Comment       string `json:"comment"`
	CatalogItemID *int64 `json:"catalog_item_id"`
}

func (b *liveBackend) InsertItem(ctx context.Context, d Draft) (*model.ListItem, error) {
	body := itemPayload{
		ID:            d.ID,
		Name:          d.Name,
		CategoryID:    d.CategoryID,
		Quantity:      d.Quantity,
		Comment:       d.Comment,
		CatalogItemID: d.CatalogItemID,
	}
	var item model.ListItem
	if err := b.do(ctx, http.MethodPost, b.itemsPath(), body, &item); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return &item, nil
}

func (b *liveBackend) DeleteItem(ctx context.Context, id string) error {
	err := b.do(ctx, http.MethodDelete, b.itemsPath()+"/"+url.PathEscape(id), nil, nil)
	if errors.Is(err, errNotFound) {
		// Another shopper got there first.
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (b *liveBackend) Suggest(ctx context.Context, d Draft) error {
	body := itemPayload{
		Name:       d.Name,
		CategoryID: d.CategoryID,
		Quantity:   d.Quantity,
		Comment:    d.Comment,
	}
	path := "/api/lists/" + strconv.FormatInt(b.listID, 10) + "/pending"
	if err := b.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("suggest item: %w", err)
	}
	return nil
}

// Subscribe dials the list's feed endpoint and pumps decoded events until the
// context is canceled or the connection drops, then closes the channel.
func (b *liveBackend) Subscribe(ctx context.Context) (<-chan feed.Event, error) {
	wsURL := httpToWS(b.baseURL) + "/ws?list_id=" + strconv.FormatInt(b.listID, 10)
	conn, _, err := ws.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	ch := make(chan feed.Event, feedBufferSize)
	go func() {
		defer close(ch)
		defer conn.Close(ws.StatusNormalClosure, "")
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var ev feed.Event
			if err := json.Unmarshal(data, &ev); err != nil {
				b.logger.Warn("malformed feed event", "error", err)
				continue
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (b *liveBackend) Close() error {
	return nil
}

// do performs one JSON round trip. 404 maps to errNotFound and 409 to
// ErrDuplicateOrigin so callers can branch on the sentinel.
func (b *liveBackend) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrDuplicateOrigin
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func httpToWS(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return baseURL
}
