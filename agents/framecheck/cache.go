package framecheck

import (
	"fmt"
	"time"

	"framecheck/internal/models"
	"framecheck/shared/storage"
)

const cacheStorageKey = "cachedResult"

// ResultCache keeps the last rendered result. It has a single slot and no expiry.
type ResultCache struct {
	store storage.Store
	now   func() time.Time
}

func NewResultCache(store storage.Store) *ResultCache {
	return &ResultCache{store: store, now: time.Now}
}

func (c *ResultCache) Store(url, html string) error {
	entry := models.CachedResult{
		URL:       url,
		HTML:      html,
		Timestamp: c.now(),
	}
	if err := c.store.Set(cacheStorageKey, entry); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

// Restore returns the cached HTML only if it was stored for exactly url.
func (c *ResultCache) Restore(url string) (string, bool, error) {
	var entry models.CachedResult
	found, err := c.store.Get(cacheStorageKey, &entry)
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached result: %w", err)
	}
	if !found || entry.URL != url {
		return "", false, nil
	}
	return entry.HTML, true, nil
}
