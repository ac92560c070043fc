package render

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontCache parses font files from a directory once and hands out
// parsed fonts by family name. Unknown names fall back to the bundled
// Go Regular face so a stale font_name never blocks a render.
type FontCache struct {
	dir string

	mu       sync.RWMutex
	fonts    map[string]*opentype.Font
	fallback *opentype.Font
}

// NewFontCache builds a cache over dir. The fallback face is parsed
// eagerly so a bad directory surfaces at startup, not mid-export.
func NewFontCache(dir string) (*FontCache, error) {
	fallback, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &FontCache{
		dir:      dir,
		fonts:    make(map[string]*opentype.Font),
		fallback: fallback,
	}, nil
}

// Lookup returns the parsed font for name, or the fallback when no
// matching file exists.
func (c *FontCache) Lookup(name string) *opentype.Font {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return c.fallback
	}

	c.mu.RLock()
	f, ok := c.fonts[key]
	c.mu.RUnlock()
	if ok {
		return f
	}

	f = c.parseFile(key)
	if f == nil {
		f = c.fallback
	}

	c.mu.Lock()
	c.fonts[key] = f
	c.mu.Unlock()
	return f
}

func (c *FontCache) parseFile(key string) *opentype.Font {
	if c.dir == "" {
		return nil
	}
	for _, ext := range []string{".ttf", ".otf"} {
		data, err := os.ReadFile(filepath.Join(c.dir, key+ext))
		if err != nil {
			continue
		}
		f, err := opentype.Parse(data)
		if err != nil {
			continue
		}
		return f
	}
	return nil
}
