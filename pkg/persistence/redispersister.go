package persistence

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/joincivil/wavs-rewards-client/pkg/model"
)

const (
	redisOpTimeout = 5 * time.Second
)

// NewRedisPersister connects to redis at address and checks the connection
func NewRedisPersister(address string, password string, db int) (*RedisPersister, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() // nolint: errcheck
		return nil, errors.Wrapf(err, "error connecting to redis at %v", address)
	}
	return &RedisPersister{client: client}, nil
}

// RedisPersister keeps claim history as a redis list and pending mints as a
// single JSON value per account
type RedisPersister struct {
	client *redis.Client
}

// ClaimHistory returns the claim records for the account, oldest first
func (r *RedisPersister) ClaimHistory(account common.Address) ([]*model.ClaimRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	values, err := r.client.LRange(ctx, claimHistoryKey(account), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "error reading claim history")
	}
	records := make([]*model.ClaimRecord, 0, len(values))
	for _, value := range values {
		record, err := decodeClaimRecord([]byte(value))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// AppendClaimRecord adds a record to the account's history
func (r *RedisPersister) AppendClaimRecord(record *model.ClaimRecord) error {
	data, err := encodeClaimRecord(record)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	err = r.client.RPush(ctx, claimHistoryKey(record.Account()), data).Err()
	return errors.Wrap(err, "error saving claim record")
}

// PendingMints returns all stored pending mints for the account, oldest first
func (r *RedisPersister) PendingMints(account common.Address) ([]*model.PendingMint, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	data, err := r.client.Get(ctx, pendingMintsKey(account)).Bytes()
	if err == redis.Nil {
		return []*model.PendingMint{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "error reading pending mints")
	}
	return decodePendingMints(data)
}

// SavePendingMints replaces the stored pending mints for the account
func (r *RedisPersister) SavePendingMints(account common.Address, mints []*model.PendingMint) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	key := pendingMintsKey(account)
	if len(mints) == 0 {
		return errors.Wrap(r.client.Del(ctx, key).Err(), "error clearing pending mints")
	}
	data, err := encodePendingMints(mints)
	if err != nil {
		return err
	}
	return errors.Wrap(r.client.Set(ctx, key, data, 0).Err(), "error saving pending mints")
}

// Close closes the redis client
func (r *RedisPersister) Close() error {
	return r.client.Close()
}
