package voices

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/upskill-audio/text-to-audio-service/internal/core"
)

// DefaultTTL is how long a fetched catalog stays valid.
const DefaultTTL = 24 * time.Hour

// ErrCatalogEmpty is returned when the provider reports no voices at all.
var ErrCatalogEmpty = errors.New("voice catalog is empty")

// Catalog caches the provider's voice list for a bounded time. Readers
// within the validity window share the cached snapshot; an expired
// snapshot triggers a refetch. Concurrent expiry may refetch more than
// once, which is harmless since listing voices is a side-effect-free read.
type Catalog struct {
	lister core.VoiceLister
	ttl    time.Duration
	now    func() time.Time

	mu        sync.RWMutex
	voices    []core.Voice
	fetchedAt time.Time
}

// NewCatalog creates a catalog backed by the given lister. A zero or
// negative ttl falls back to DefaultTTL.
func NewCatalog(lister core.VoiceLister, ttl time.Duration) *Catalog {
	return NewCatalogWithClock(lister, ttl, time.Now)
}

// NewCatalogWithClock creates a catalog with an injectable clock. This
// constructor is primarily for testing expiry behavior without sleeping.
func NewCatalogWithClock(
	lister core.VoiceLister,
	ttl time.Duration,
	now func() time.Time,
) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Catalog{
		lister: lister,
		ttl:    ttl,
		now:    now,
	}
}

// Voices returns the cached voice list, refetching it from the provider
// when the snapshot has expired. The returned slice is shared and must
// not be mutated by callers.
func (c *Catalog) Voices(ctx context.Context) ([]core.Voice, error) {
	c.mu.RLock()
	voices, fetchedAt := c.voices, c.fetchedAt
	c.mu.RUnlock()

	if voices != nil && !isExpired(c.now(), fetchedAt, c.ttl) {
		return voices, nil
	}

	fetched, err := c.lister.ListVoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch voice catalog: %w", err)
	}

	if len(fetched) == 0 {
		return nil, ErrCatalogEmpty
	}

	c.mu.Lock()
	c.voices = fetched
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return fetched, nil
}

// isExpired reports whether a snapshot fetched at fetchedAt is stale at
// the given instant.
func isExpired(now, fetchedAt time.Time, ttl time.Duration) bool {
	return now.Sub(fetchedAt) >= ttl
}
