package resolver

import (
	"context"
	"errors"
	"sync"

	"symres/internal/env"
	"symres/internal/names"
)

// errNotFound marks an ordinary miss. It is the only failure that is
// memoized in the negative sets.
var errNotFound = errors.New("no live symbol")

type LocateStats struct {
	Attempted int
	Resolved  int
	Skipped   int
	Failed    int
}

// TypeLocator finds the live handle of a canonical type name that is not in
// the cache. Locate returns errNotFound for a miss.
type TypeLocator interface {
	Name() string
	Accepts(name names.TypeName) bool
	Locate(ctx context.Context, name names.TypeName) (env.Type, error)
}

type StageResult struct {
	Locator string
	Stats   LocateStats
}

// LocatorChain asks its locators in order until one finds the type.
type LocatorChain struct {
	locators []TypeLocator

	mu    sync.Mutex
	stats map[string]*LocateStats
}

func NewLocatorChain(locators ...TypeLocator) *LocatorChain {
	return &LocatorChain{locators: locators, stats: make(map[string]*LocateStats)}
}

// Run returns the first handle found. Errors other than errNotFound stop the
// chain.
func (c *LocatorChain) Run(ctx context.Context, name names.TypeName) (env.Type, error) {
	for _, l := range c.locators {
		if !l.Accepts(name) {
			c.record(l.Name(), func(s *LocateStats) { s.Skipped++ })
			continue
		}
		t, err := l.Locate(ctx, name)
		switch {
		case err == nil && t != nil:
			c.record(l.Name(), func(s *LocateStats) { s.Attempted++; s.Resolved++ })
			return t, nil
		case err == nil || errors.Is(err, errNotFound):
			c.record(l.Name(), func(s *LocateStats) { s.Attempted++ })
		default:
			c.record(l.Name(), func(s *LocateStats) { s.Attempted++; s.Failed++ })
			return nil, err
		}
	}
	return nil, errNotFound
}

func (c *LocatorChain) record(name string, fn func(*LocateStats)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stats[name]
	if !ok {
		s = &LocateStats{}
		c.stats[name] = s
	}
	fn(s)
}

// Stages reports cumulative statistics in chain order.
func (c *LocatorChain) Stages() []StageResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]StageResult, 0, len(c.locators))
	for _, l := range c.locators {
		var s LocateStats
		if st, ok := c.stats[l.Name()]; ok {
			s = *st
		}
		out = append(out, StageResult{Locator: l.Name(), Stats: s})
	}
	return out
}
