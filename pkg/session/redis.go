package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis.
//
// Keys:
//   - {prefix}:id:{id}       encoded session, expires with the session
//   - {prefix}:token:{token} session ID, expires with the session
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures the Redis store.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix. Default: "session".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed session store.
// The client should be obtained from pkg/redis.Open or pkg/redis.MustOpen.
//
// Example:
//
//	client := redis.MustOpen(ctx, redis.Config{URL: os.Getenv("REDIS_URL")})
//	store := session.NewRedisStore(client, session.WithPrefix("identity"))
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "session"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new session.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess, "")
}

// Get retrieves a session by token.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	id, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess, err := s.byID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return sess, nil
}

// Update saves the session and drops the previous token index on rotation.
func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	var oldToken string
	prev, err := s.byID(ctx, sess.ID)
	switch {
	case err == nil:
		oldToken = prev.Token
	case !errors.Is(err, ErrNotFound):
		return err
	}
	return s.write(ctx, sess, oldToken)
}

// Delete removes a session by ID.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	sess, err := s.byID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	return s.client.Del(ctx, s.idKey(id), s.tokenKey(sess.Token)).Err()
}

func (s *RedisStore) write(ctx context.Context, sess *Session, oldToken string) error {
	data, err := Marshal(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if oldToken != "" && oldToken != sess.Token {
			pipe.Del(ctx, s.tokenKey(oldToken))
		}
		pipe.Set(ctx, s.idKey(sess.ID), data, ttl)
		pipe.Set(ctx, s.tokenKey(sess.Token), sess.ID, ttl)
		return nil
	})
	return err
}

func (s *RedisStore) byID(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, s.idKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return Unmarshal(data)
}

func (s *RedisStore) idKey(id string) string {
	return s.prefix + ":id:" + id
}

func (s *RedisStore) tokenKey(token string) string {
	return s.prefix + ":token:" + token
}

var _ Store = (*RedisStore)(nil)
