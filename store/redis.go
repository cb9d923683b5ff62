package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reoring/gopdm"
)

// RedisConfig holds Redis-specific configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port)
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key.
	Prefix string
	// TTL expires stored graphs; zero keeps them forever.
	TTL time.Duration
}

// DefaultRedisConfig returns a configuration for a local server.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{Addr: "localhost:6379", Prefix: "gopdm:object:"}
}

// RedisStore keeps each graph as one JSON string value.
type RedisStore struct {
	client *redis.Client
	s      *gopdm.Serializer
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, s *gopdm.Serializer) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, ioFailure("redis ping", err)
	}
	st := NewRedisStoreWithClient(client, s, cfg.Prefix)
	st.ttl = cfg.TTL
	return st, nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, s *gopdm.Serializer, prefix string) *RedisStore {
	if client == nil || s == nil {
		panic("store.NewRedisStoreWithClient: client and serializer must not be nil")
	}
	return &RedisStore{client: client, s: s, prefix: prefix, log: gopdm.Logger()}
}

// WithLogger replaces the logger used for debug traces.
func (r *RedisStore) WithLogger(l *zap.Logger) *RedisStore {
	r.log = l
	return r
}

func (r *RedisStore) key(id string) string { return r.prefix + id }

func (r *RedisStore) Save(ctx context.Context, root gopdm.Handle) error {
	text, err := r.s.WithType(gopdm.DataFull).WithUUIDs(true).WriteObjectToString(root)
	if err != nil {
		return err
	}
	id := root.AsObject().UUID()
	if err := r.client.Set(ctx, r.key(id), text, r.ttl).Err(); err != nil {
		return ioFailure("redis set", err)
	}
	r.log.Debug("stored object", zap.String("uuid", id), zap.String("class", root.AsObject().ClassKeyword()))
	return nil
}

func (r *RedisStore) Load(ctx context.Context, id string) (gopdm.Handle, error) {
	text, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(id)
		}
		return nil, ioFailure("redis get", err)
	}
	r.log.Debug("loaded object", zap.String("uuid", id))
	return r.s.CreateObjectFromString(text)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return ioFailure("redis del", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// List scans the prefix and reads the header of every stored graph.
func (r *RedisStore) List(ctx context.Context) ([]Entry, error) {
	var out []Entry
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		text, err := r.client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, ioFailure("redis get", err)
		}
		hdr, err := gopdm.ReadHeader(text)
		if err != nil {
			r.log.Warn("skipping unreadable entry", zap.String("key", iter.Val()), zap.Error(err))
			continue
		}
		out = append(out, Entry{UUID: hdr.UUID, Class: hdr.Class})
	}
	if err := iter.Err(); err != nil {
		return nil, ioFailure("redis scan", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UUID < out[j].UUID })
	return out, nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
