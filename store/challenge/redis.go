package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pandodao/zilt-wallet/core"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wallet:challenge:"

// NewRedis keeps challenges in redis. Entries expire after ttl, so Purge has
// nothing to do.
func NewRedis(client *redis.Client, ttl time.Duration) core.ChallengeStore {
	return &redisStore{client: client, ttl: ttl}
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *redisStore) Find(ctx context.Context, phone string) (*core.VerificationChallenge, error) {
	raw, err := s.client.Get(ctx, keyPrefix+phone).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var c core.VerificationChallenge
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func (s *redisStore) Save(ctx context.Context, challenge *core.VerificationChallenge) error {
	raw, err := json.Marshal(challenge)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, keyPrefix+challenge.PhoneNumber, raw, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, phone string) error {
	return s.client.Del(ctx, keyPrefix+phone).Err()
}

// Take runs under WATCH, so a concurrent writer of the key aborts it and the
// challenge is reported as not taken.
func (s *redisStore) Take(ctx context.Context, phone string, match func(*core.VerificationChallenge) bool) (*core.VerificationChallenge, error) {
	key := keyPrefix + phone

	var taken *core.VerificationChallenge
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		} else if err != nil {
			return err
		}

		var c core.VerificationChallenge
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}

		if !match(&c) {
			return nil
		}

		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		}); err != nil {
			return err
		}

		taken = &c
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return taken, nil
}

func (s *redisStore) Purge(context.Context, time.Time) (int, error) {
	return 0, nil
}
