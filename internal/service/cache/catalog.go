package cache

import (
	"context"
	"time"

	"FlowScan/internal/domain/models"
	drepo "FlowScan/internal/domain/repository"
)

const catalogKey = "instruments"

// Catalog memoizes a venue catalog between cycles. Failed reads are not cached.
type Catalog struct {
	next  drepo.InstrumentCatalog
	ttl   time.Duration
	store *TTLCache
}

func NewCatalog(next drepo.InstrumentCatalog, ttl time.Duration) *Catalog {
	return &Catalog{next: next, ttl: ttl, store: NewTTLCache()}
}

func (c *Catalog) Instruments(ctx context.Context) ([]models.Instrument, error) {
	if v, ok := c.store.Get(catalogKey); ok {
		return v.([]models.Instrument), nil
	}
	list, err := c.next.Instruments(ctx)
	if err != nil {
		return nil, err
	}
	c.store.Set(catalogKey, list, c.ttl)
	return list, nil
}
