package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/ledgerline/payment-orchestrator/internal/domain/entity"
	apperr "github.com/ledgerline/payment-orchestrator/internal/domain/errors"
	domainrepo "github.com/ledgerline/payment-orchestrator/internal/domain/repository"
)

const (
	ledgerKeyPrefix  = "idempotency:"
	reservationToken = "__reserved__"
	// A reservation left behind by a crashed winner expires so the key can
	// be retried; a recorded id never expires.
	reservationTTL = 30 * time.Second
	pollInterval   = 50 * time.Millisecond
	pollBudget     = 2 * time.Second
)

// RedisLedger keeps idempotency keys in Redis so replays survive process
// restarts. SetNX decides the single winner for a key; losers poll until the
// winner has recorded the created intent's id.
type RedisLedger struct {
	client *redis.Client
	store  domainrepo.RecordStore
	logger *zap.Logger
}

func NewRedisLedger(client *redis.Client, store domainrepo.RecordStore, logger *zap.Logger) *RedisLedger {
	return &RedisLedger{
		client: client,
		store:  store,
		logger: logger,
	}
}

func (l *RedisLedger) ReserveOrFetch(ctx context.Context, key string, create domainrepo.IntentFactory) (*entity.PaymentIntent, bool, error) {
	if key == "" {
		intent, err := create(ctx)
		return intent, false, err
	}

	redisKey := ledgerKeyPrefix + key
	won, err := l.client.SetNX(ctx, redisKey, reservationToken, reservationTTL).Result()
	if err != nil {
		return nil, false, apperr.NewAppError(apperr.ErrDownstreamUnreachable, "idempotency ledger unavailable", err)
	}

	if !won {
		intent, err := l.awaitRecorded(ctx, redisKey)
		return intent, true, err
	}

	intent, err := create(ctx)
	if err != nil {
		// Release the reservation so a later retry of the same key can run
		// the factory again; nothing was created.
		if delErr := l.client.Del(ctx, redisKey).Err(); delErr != nil {
			l.logger.Warn("failed to release idempotency reservation",
				zap.String("key", key),
				zap.Error(delErr))
		}
		return nil, false, err
	}

	if err := l.client.Set(ctx, redisKey, intent.ID, 0).Err(); err != nil {
		l.logger.Warn("failed to record idempotency key",
			zap.String("key", key),
			zap.String("intent_id", intent.ID),
			zap.Error(err))
	}
	return intent, false, nil
}

// awaitRecorded waits for the reservation winner to publish the intent id,
// then fetches the intent itself.
func (l *RedisLedger) awaitRecorded(ctx context.Context, redisKey string) (*entity.PaymentIntent, error) {
	deadline := time.Now().Add(pollBudget)
	for {
		val, err := l.client.Get(ctx, redisKey).Result()
		switch {
		case err == redis.Nil:
			// Winner failed and released the key; the caller should retry.
			return nil, apperr.Conflict("idempotent create was abandoned, retry the request")
		case err != nil:
			return nil, apperr.NewAppError(apperr.ErrDownstreamUnreachable, "idempotency ledger unavailable", err)
		case val != reservationToken:
			return l.store.GetIntent(ctx, val)
		}

		if time.Now().After(deadline) {
			return nil, apperr.Conflict("idempotent create still in progress, retry the request")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
