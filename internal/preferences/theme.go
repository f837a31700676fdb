package preferences

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"synergy/internal/store"
)

// ErrClosed is returned by Set after Close.
var ErrClosed = fmt.Errorf("theme context closed: %w", store.ErrUnavailable)

// ThemeContext holds the active theme for the lifetime of the server. It is
// safe for concurrent use.
type ThemeContext struct {
	store    *Store
	fallback Theme
	log      *slog.Logger

	mu     sync.RWMutex
	theme  Theme
	closed bool
}

// NewThemeContext starts at fallback until Load is called. An invalid
// fallback means DefaultTheme.
func NewThemeContext(s *Store, fallback Theme, log *slog.Logger) *ThemeContext {
	if !fallback.Valid() {
		fallback = DefaultTheme
	}
	return &ThemeContext{store: s, fallback: fallback, log: log, theme: fallback}
}

// Load reads the stored theme. When nothing is stored or the store fails,
// the fallback stays in effect; a store failure is logged and returned.
func (c *ThemeContext) Load(ctx context.Context) error {
	p, ok, err := c.store.lookup(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case err != nil:
		c.log.Warn("failed to load theme, using fallback", "fallback", c.fallback, "error", err)
		c.theme = c.fallback
		return err
	case !ok:
		c.theme = c.fallback
	default:
		c.theme = p.Theme
	}
	return nil
}

func (c *ThemeContext) Current() Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// Set persists theme and then makes it current. On failure the current
// theme is unchanged.
func (c *ThemeContext) Set(ctx context.Context, theme Theme) (Theme, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.theme, ErrClosed
	}
	p, err := c.store.SetTheme(ctx, theme)
	if err != nil {
		return c.theme, err
	}
	c.theme = p.Theme
	return c.theme, nil
}

// Toggle switches between light and dark.
func (c *ThemeContext) Toggle(ctx context.Context) (Theme, error) {
	next := Dark
	if c.Current() == Dark {
		next = Light
	}
	return c.Set(ctx, next)
}

// Close ends the context. Current keeps answering; Set fails.
func (c *ThemeContext) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
