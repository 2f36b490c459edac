package store

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mind-engage/mindengage-selfcheck/internal/assessment"
)

// CachedStore keeps recently used definitions in memory. Definitions change
// rarely and are read on every scoring request.
type CachedStore struct {
	Store
	defs *lru.Cache[string, assessment.Definition]
}

func NewCachedStore(s Store, size int) (*CachedStore, error) {
	if size <= 0 {
		size = 128
	}
	c, err := lru.New[string, assessment.Definition](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{Store: s, defs: c}, nil
}

func (c *CachedStore) GetDefinition(ctx context.Context, id string) (assessment.Definition, error) {
	if d, ok := c.defs.Get(id); ok {
		return d, nil
	}
	d, err := c.Store.GetDefinition(ctx, id)
	if err != nil {
		return assessment.Definition{}, err
	}
	c.defs.Add(id, d)
	return d, nil
}

func (c *CachedStore) PutDefinition(ctx context.Context, d assessment.Definition) error {
	if err := c.Store.PutDefinition(ctx, d); err != nil {
		return err
	}
	c.defs.Remove(d.ID)
	return nil
}
