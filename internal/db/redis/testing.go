package redis

import (
	"time"

	"github.com/redis/rueidis"
)

// NewStoreForTest creates a Store with the provided rueidis client (test-only).
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

// NewStoreForTestWithTimeout is NewStoreForTest with a per-command deadline.
func NewStoreForTestWithTimeout(c rueidis.Client, opTimeout time.Duration) *Store {
	return &Store{client: c, opTimeout: opTimeout}
}
