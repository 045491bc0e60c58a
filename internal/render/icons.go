package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// IconLoader fetches an icon and returns something an <img> or <image> can
// point at: a URL or a data URI.
type IconLoader func(ctx context.Context, id string) (string, error)

type iconState int

const (
	iconLoading iconState = iota
	iconReady
	iconFailed
)

type iconEntry struct {
	state iconState
	href  string
}

// IconCache loads icons in the background. The first Get for an id starts
// the load and reports not ready; when the load finishes the ready hook
// runs once for that id so the caller can redraw.
type IconCache struct {
	loader  IconLoader
	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	entries map[string]*iconEntry
	onReady func(id string)
	wg      sync.WaitGroup
}

func NewIconCache(loader IconLoader, timeout time.Duration, logger zerolog.Logger) *IconCache {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &IconCache{
		loader:  loader,
		timeout: timeout,
		logger:  logger.With().Str("component", "icons").Logger(),
		entries: make(map[string]*iconEntry),
	}
}

// OnReady sets the hook called after an icon finishes loading. The hook runs
// on the loader goroutine with no cache lock held.
func (c *IconCache) OnReady(fn func(id string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = fn
}

// Get returns the icon href if it has loaded. Icons that failed to load stay
// unavailable and are drawn as dots.
func (c *IconCache) Get(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		c.entries[id] = &iconEntry{state: iconLoading}
		c.wg.Add(1)
		go c.load(id)
		return "", false
	}
	return e.href, e.state == iconReady
}

// Wait blocks until every started load has finished.
func (c *IconCache) Wait() {
	c.wg.Wait()
}

func (c *IconCache) load(id string) {
	defer c.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	href, err := c.loader(ctx, id)

	c.mu.Lock()
	e := c.entries[id]
	if err != nil {
		e.state = iconFailed
		c.mu.Unlock()
		c.logger.Warn().Err(err).Str("icon", id).Msg("icon load failed")
		return
	}
	e.state = iconReady
	e.href = href
	hook := c.onReady
	c.mu.Unlock()

	c.logger.Debug().Str("icon", id).Msg("icon loaded")
	if hook != nil {
		hook(id)
	}
}

// StaticLoader serves icons from a fixed id → href table.
func StaticLoader(hrefs map[string]string) IconLoader {
	return func(_ context.Context, id string) (string, error) {
		href, ok := hrefs[id]
		if !ok {
			return "", fmt.Errorf("unknown icon %q", id)
		}
		return href, nil
	}
}

// HTTPLoader downloads icons from urls and inlines them as data URIs so the
// rendered frame does not depend on the icon host being reachable.
func HTTPLoader(client *http.Client, urls map[string]string) IconLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, id string) (string, error) {
		url, ok := urls[id]
		if !ok {
			return "", fmt.Errorf("unknown icon %q", id)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("fetching icon %q: %w", id, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("fetching icon %q: status %d", id, resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return "", err
		}
		mime := resp.Header.Get("Content-Type")
		if mime == "" {
			mime = http.DetectContentType(body)
		}
		return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(body), nil
	}
}
