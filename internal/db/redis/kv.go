package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/shelfstream/prodex/internal/db"
)

// Get retrieves a value. Returns db.ErrKeyNotFound when absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	res, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, &db.Error{Op: db.OpGet, Err: db.ErrKeyNotFound}
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return res, nil
}

// Set stores a value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Set().Key(key).Value(string(value)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(string(value)).Ex(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// IncrBy atomically increments the integer at key, returning the new value.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	cmd := s.b().Incrby().Key(key).Increment(val).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncrBy, Err: err}
	}
	return n, nil
}

// Expire sets a TTL on key. With nx the TTL is only set when the key has
// none, which keeps a counting window stable across increments.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	var err error
	if nx {
		cmd := s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Nx().Build()
		err = s.do(ctx, cmd).Error()
	} else {
		cmd := s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build()
		err = s.do(ctx, cmd).Error()
	}
	if err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}
