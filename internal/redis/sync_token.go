package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/gomodule/redigo/redis"
)

// SyncTokenRepository stores the incremental sync token of each provider
// linked calendar.
type SyncTokenRepository struct {
	pool *redis.Pool
}

func NewSyncTokenRepository(pool *redis.Pool) *SyncTokenRepository {
	return &SyncTokenRepository{pool: pool}
}

func syncTokenKey(calendarID int64) string {
	return fmt.Sprintf("sync_token:%d", calendarID)
}

// GetSyncToken returns "" when the calendar was never synced.
func (r *SyncTokenRepository) GetSyncToken(ctx context.Context, calendarID int64) (string, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return "", fmt.Errorf("get conn: %w", err)
	}
	defer conn.Close()

	token, err := redis.String(conn.Do("GET", syncTokenKey(calendarID)))
	if err != nil && !errors.Is(err, redis.ErrNil) {
		return "", fmt.Errorf("get sync token: %w", err)
	}

	return token, nil
}

// SetSyncToken stores token; an empty token forces a full resync.
func (r *SyncTokenRepository) SetSyncToken(ctx context.Context, calendarID int64, token string) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get conn: %w", err)
	}
	defer conn.Close()

	if token == "" {
		_, err = conn.Do("DEL", syncTokenKey(calendarID))
	} else {
		_, err = conn.Do("SET", syncTokenKey(calendarID), token)
	}
	if err != nil {
		return fmt.Errorf("set sync token: %w", err)
	}

	return nil
}
