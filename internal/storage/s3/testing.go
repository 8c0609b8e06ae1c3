package s3

import "time"

// NewStoreForTest creates a Store with the provided client (test-only).
func NewStoreForTest(c api, bucket, baseURL string) *Store {
	return &Store{client: c, bucket: bucket, baseURL: baseURL}
}

// NewStoreForTestWithTimeout is NewStoreForTest with a per-call deadline.
func NewStoreForTestWithTimeout(c api, bucket, baseURL string, timeout time.Duration) *Store {
	return &Store{client: c, bucket: bucket, baseURL: baseURL, timeout: timeout}
}
