package parser

import (
	"bytes"
	"context"

	"github.com/cespare/xxhash/v2"
)

// TreeCache memoizes parse results for one unit of work, such as a single
// validation call. Entries are keyed by a hash of the source and confirmed
// against the exact bytes, so two different texts never share a result.
// A TreeCache is not safe for concurrent use.
type TreeCache struct {
	parser  *Parser
	entries map[uint64][]*Result
	hits    int
}

// NewTreeCache creates an empty cache backed by its own parser.
func NewTreeCache() *TreeCache {
	return &TreeCache{
		parser:  New(),
		entries: make(map[uint64][]*Result),
	}
}

// Parse returns the cached result for source, parsing it on first use.
func (c *TreeCache) Parse(ctx context.Context, source []byte) (*Result, error) {
	key := xxhash.Sum64(source)
	for _, r := range c.entries[key] {
		if bytes.Equal(r.Source, source) {
			c.hits++
			return r, nil
		}
	}

	result, err := c.parser.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	c.entries[key] = append(c.entries[key], result)
	return result, nil
}

// Hits returns how many lookups were served from the cache.
func (c *TreeCache) Hits() int { return c.hits }

// Len returns the number of distinct sources cached.
func (c *TreeCache) Len() int {
	n := 0
	for _, rs := range c.entries {
		n += len(rs)
	}
	return n
}

// Close releases the cache's parser.
func (c *TreeCache) Close() {
	c.parser.Close()
	c.entries = nil
}
