// Package repo provides durable session storage keyed by call id.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/voicedesk/server/internal/agent/model"
	errx "github.com/voicedesk/server/internal/core/error"
	logx "github.com/voicedesk/server/pkg/logger"
)

// RedisSessionRepository stores one JSON session per call with a TTL that is
// refreshed on every write. Writes are optimistic: the stored version must
// match the caller's expectation or the write is rejected, so a transport
// retry racing the original turn can never commit a lost update.
type RedisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepository) sessionKey(callID string) string {
	return fmt.Sprintf("call:%s:session", callID)
}

func (r *RedisSessionRepository) Get(ctx context.Context, callID string) (*model.Session, error) {
	key := r.sessionKey(callID)

	b, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		return nil, errx.WrapRedis(err)
	}

	var sess model.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to unmarshal session")
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (r *RedisSessionRepository) Put(ctx context.Context, session *model.Session, expectedVersion int64) error {
	key := r.sessionKey(session.CallID)

	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Result()
		switch {
		case err == nil:
			var stored model.Session
			if uerr := json.Unmarshal([]byte(cur), &stored); uerr != nil {
				return fmt.Errorf("unmarshal stored session: %w", uerr)
			}
			if stored.Version != expectedVersion {
				return errx.ErrVersionConflict
			}
		case errors.Is(err, redis.Nil):
			if expectedVersion != 0 {
				return errx.ErrVersionConflict
			}
		default:
			return err
		}

		next := *session
		next.Version = expectedVersion + 1
		next.UpdatedAt = time.Now().UTC()
		b, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, r.ttl)
			return nil
		})
		return err
	}

	err := r.rdb.Watch(ctx, txf, key)
	switch {
	case err == nil:
		session.Version = expectedVersion + 1
		return nil
	case errors.Is(err, errx.ErrVersionConflict):
		return errx.ErrVersionConflict
	case errors.Is(err, redis.TxFailedErr):
		// another writer touched the key between WATCH and EXEC
		return errx.ErrVersionConflict
	default:
		logx.Error().Err(err).Str("key", key).Msg("failed to persist session to redis")
		return errx.WrapRedis(err)
	}
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)
