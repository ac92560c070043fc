// Package cache keeps the per-user inspector window in memory: the
// heading list plus the first few values of each heading. The full
// value list stays in the database until load-all is requested.
package cache

import (
	"sync"
)

// Inspector caches heading lists and value windows keyed by user code.
type Inspector struct {
	mu      sync.RWMutex
	limit   int
	headers map[string][]string          // userCode -> ordered headings
	windows map[string]map[string]window // userCode -> heading -> window
}

type window struct {
	values []string
	full   bool
}

// NewInspector creates a cache whose windows hold at most limit values.
func NewInspector(limit int) *Inspector {
	if limit < 1 {
		limit = 10
	}
	return &Inspector{
		limit:   limit,
		headers: make(map[string][]string),
		windows: make(map[string]map[string]window),
	}
}

// Limit returns the window size.
func (c *Inspector) Limit() int { return c.limit }

// SetHeaders replaces the cached heading list for a user.
func (c *Inspector) SetHeaders(userCode string, headings []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[userCode] = append([]string(nil), headings...)
}

// Headers returns the cached heading list, or ok=false if none cached.
func (c *Inspector) Headers(userCode string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hs, ok := c.headers[userCode]
	if !ok {
		return nil, false
	}
	return append([]string(nil), hs...), true
}

// SetWindow caches the leading values for a heading. Values beyond the
// limit are truncated; full records whether the window already covers
// the whole list.
func (c *Inspector) SetWindow(userCode, heading string, values []string, full bool) {
	capped := values
	if len(capped) > c.limit {
		capped = capped[:c.limit]
		full = false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	uw, ok := c.windows[userCode]
	if !ok {
		uw = make(map[string]window)
		c.windows[userCode] = uw
	}
	uw[heading] = window{values: append([]string(nil), capped...), full: full}
}

// SetFull caches the complete value list, bypassing the window limit.
// Used by the load-all action.
func (c *Inspector) SetFull(userCode, heading string, values []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	uw, ok := c.windows[userCode]
	if !ok {
		uw = make(map[string]window)
		c.windows[userCode] = uw
	}
	uw[heading] = window{values: append([]string(nil), values...), full: true}
}

// Window returns the cached values for a heading.
func (c *Inspector) Window(userCode, heading string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	uw, ok := c.windows[userCode]
	if !ok {
		return nil, false
	}
	w, ok := uw[heading]
	if !ok {
		return nil, false
	}
	return append([]string(nil), w.values...), true
}

// FullAvailable reports whether the cached window covers the whole
// value list. The inspector only allows in-place edits of existing
// values when it does.
func (c *Inspector) FullAvailable(userCode, heading string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	uw, ok := c.windows[userCode]
	if !ok {
		return false
	}
	return uw[heading].full
}

// DeleteHeading evicts one heading's window.
func (c *Inspector) DeleteHeading(userCode, heading string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if uw, ok := c.windows[userCode]; ok {
		delete(uw, heading)
	}
}

// PurgeUser evicts everything cached for a user. Called on logout.
func (c *Inspector) PurgeUser(userCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.headers, userCode)
	delete(c.windows, userCode)
}
