package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/jobfit/internal/model"
)

var _ model.CacheStore = (*RedisStore)(nil)

// maxTxRetries bounds optimistic-lock retries when another writer touches the
// document between WATCH and EXEC.
const maxTxRetries = 16

// RedisStore keeps the user document under a single Redis key. Job updates use
// WATCH/MULTI so concurrent writers from other processes never lose updates.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisOptions configures the Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis at %s: %w", opts.Addr, err)
	}
	return &RedisStore{client: client, key: documentKey}, nil
}

func (s *RedisStore) read(ctx context.Context, c redis.Cmdable) ([]byte, bool, error) {
	raw, err := c.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *RedisStore) GetUserData(ctx context.Context) (*model.UserRelevantData, error) {
	raw, found, err := s.read(ctx, s.client)
	if err != nil {
		return nil, model.StorageError("reading user data", err)
	}
	data, err := decodeDocument(raw, found)
	if err != nil {
		return nil, model.StorageError("reading user data", err)
	}
	return data, nil
}

func (s *RedisStore) SaveUserData(ctx context.Context, data *model.UserRelevantData) error {
	enc, err := model.EncodeUserData(data)
	if err != nil {
		return model.StorageError("saving user data", err)
	}
	if err := s.client.Set(ctx, s.key, enc, 0).Err(); err != nil {
		return model.StorageError("saving user data", err)
	}
	return nil
}

// UpdateJobCache may run mutate more than once if the optimistic transaction
// is retried; each run sees a freshly read snapshot.
func (s *RedisStore) UpdateJobCache(ctx context.Context, jobID string, mutate func(*model.JobPostingCacheRecord)) (*model.UserRelevantData, error) {
	var data *model.UserRelevantData
	err := s.watch(ctx, func(raw []byte, found bool) ([]byte, error) {
		var enc []byte
		var err error
		data, enc, err = applyJobUpdate(raw, found, jobID, mutate)
		return enc, err
	})
	if err != nil {
		return nil, model.StorageError(fmt.Sprintf("updating job %q", jobID), err)
	}
	return data, nil
}

func (s *RedisStore) ResetJobCache(ctx context.Context) error {
	if err := s.watch(ctx, applyReset); err != nil {
		return model.StorageError("resetting job cache", err)
	}
	return nil
}

func (s *RedisStore) watch(ctx context.Context, apply func(raw []byte, found bool) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		raw, found, err := s.read(ctx, tx)
		if err != nil {
			return err
		}
		enc, err := apply(raw, found)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, enc, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("document changed concurrently %d times", maxTxRetries)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
