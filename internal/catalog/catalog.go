// Package catalog loads the asset catalog: the mapping from asset ids to
// their source references, and the list of ids eligible for screening.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
)

// Entry is one asset selected for screening.
type Entry struct {
	ID     string // Asset id as listed in the catalog
	Source string // Source reference the fetcher resolves
}

// Catalog holds the id-to-source mapping loaded from disk.
type Catalog struct {
	sources map[string]string
	log     *zap.Logger
}

// Load reads a JSON object mapping asset ids to source references. A nil
// logger disables diagnostics.
func Load(path string, log *zap.Logger) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var sources map[string]string
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	return &Catalog{sources: sources, log: log}, nil
}

// Len returns the number of catalogued assets.
func (c *Catalog) Len() int {
	return len(c.sources)
}

// Source returns the source reference for an asset id.
func (c *Catalog) Source(id string) (string, bool) {
	src, ok := c.sources[id]
	return src, ok
}

// Select resolves the eligible id list at path against the catalog and
// returns the entries to screen, ordered by id so runs are deterministic.
// The work list is the intersection of the two inputs: eligible ids with
// no catalog entry are skipped with a warning, since the id list and the
// catalog are maintained separately and drift.
func (c *Catalog) Select(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading id list: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("parsing id list %s: %w", path, err)
	}

	entries := make([]Entry, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		src, ok := c.sources[id]
		if !ok {
			c.log.Warn("eligible id not in catalog, skipping",
				zap.String("asset", id))
			continue
		}
		entries = append(entries, Entry{ID: id, Source: src})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// All returns every catalogued asset, ordered by id.
func (c *Catalog) All() []Entry {
	entries := make([]Entry, 0, len(c.sources))
	for id, src := range c.sources {
		entries = append(entries, Entry{ID: id, Source: src})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries
}
