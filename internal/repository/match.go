package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-match/internal/entity"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrMatchCorrupted = errors.New("match snapshot is corrupted")
)

const matchKeyPrefix = "match:"

// MatchRepository keeps per-session match snapshots. Every write refreshes
// the expiry, so a snapshot lives only while its session stays in use.
type MatchRepository interface {
	CreateOrUpdate(ctx context.Context, sessionID string, state *entity.MatchState) error
	GetByID(ctx context.Context, sessionID string) (*entity.MatchState, error)
	DeleteByID(ctx context.Context, sessionID string) error
}

type dbMatch struct {
	client *redis.Client
	ttl    time.Duration
}

func NewMatchRepository(client *redis.Client, ttl time.Duration) MatchRepository {
	return &dbMatch{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbMatch) CreateOrUpdate(ctx context.Context, sessionID string, state *entity.MatchState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	err = that.client.Set(ctx, matchKeyPrefix+sessionID, stateJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetByID(ctx context.Context, sessionID string) (*entity.MatchState, error) {
	response, err := that.client.Get(ctx, matchKeyPrefix+sessionID).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}

	var state entity.MatchState
	if err = json.Unmarshal([]byte(response), &state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMatchCorrupted, err)
	}

	return &state, nil
}

func (that *dbMatch) DeleteByID(ctx context.Context, sessionID string) error {
	err := that.client.Del(ctx, matchKeyPrefix+sessionID).Err()
	if err != nil {
		return fmt.Errorf("failed to delete match by id: %w", err)
	}

	return nil
}
