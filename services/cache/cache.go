package cache

import (
	"time"
)

// CacheService marks listings already reconciled in the current traversal
// cycle, so a listing surfacing on several catalog pages is processed once.
type CacheService interface {
	// Get retrieves a value from the cache
	Get(key string) ([]byte, error)

	// Set stores a value in the cache with an expiration time
	Set(key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache
	Delete(key string) error
}
