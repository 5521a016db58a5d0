package layout

import "natsu/internal/metadata"

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

type cache struct {
	byType map[*metadata.TypeDef]*cacheEntry
}

func newCache() *cache {
	return &cache{byType: make(map[*metadata.TypeDef]*cacheEntry, 64)}
}

func (c *cache) get(t *metadata.TypeDef) (*cacheEntry, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.byType[t]
	return e, ok
}

func (c *cache) put(t *metadata.TypeDef, e *cacheEntry) {
	if c == nil {
		return
	}
	if e == nil {
		delete(c.byType, t)
		return
	}
	c.byType[t] = e
}
