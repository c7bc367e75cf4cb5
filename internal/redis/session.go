package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SergeyKozhin/calendar-sync-backend/internal/model"
	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

// RefreshTokenRepository keeps refresh tokens with a TTL along with a per user
// index used to revoke every session of a user.
type RefreshTokenRepository struct {
	pool   *redis.Pool
	logger *zap.SugaredLogger
	ttl    time.Duration
}

func NewRefreshTokenRepository(pool *redis.Pool, logger *zap.SugaredLogger, ttl time.Duration) *RefreshTokenRepository {
	return &RefreshTokenRepository{pool: pool, logger: logger, ttl: ttl}
}

func sessionKey(session string) string {
	return "session:" + session
}

func userSessionsKey(id int64) string {
	return fmt.Sprintf("user_sessions:%d", id)
}

func (r *RefreshTokenRepository) Add(ctx context.Context, session string, id int64) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get conn: %w", err)
	}
	defer conn.Close()

	return r.add(conn, session, id)
}

func (r *RefreshTokenRepository) add(conn redis.Conn, session string, id int64) error {
	_, err := redis.String(conn.Do("SET", sessionKey(session), id, "NX", "PX", r.ttl.Milliseconds()))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return model.ErrAlreadyExists
		}
		return fmt.Errorf("set session: %w", err)
	}

	if _, err := conn.Do("SADD", userSessionsKey(id), session); err != nil {
		return fmt.Errorf("index session: %w", err)
	}

	return nil
}

func (r *RefreshTokenRepository) Get(ctx context.Context, session string) (int64, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("get conn: %w", err)
	}
	defer conn.Close()

	id, err := redis.Int64(conn.Do("GET", sessionKey(session)))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return 0, model.ErrNoRecord
		}
		return 0, fmt.Errorf("get session: %w", err)
	}

	return id, nil
}

// Refresh replaces old with new, keeping the owner.
func (r *RefreshTokenRepository) Refresh(ctx context.Context, old, new string) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get conn: %w", err)
	}
	defer conn.Close()

	id, err := redis.Int64(conn.Do("GETDEL", sessionKey(old)))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return model.ErrNoRecord
		}
		return fmt.Errorf("take session: %w", err)
	}

	if _, err := conn.Do("SREM", userSessionsKey(id), old); err != nil {
		r.logger.Warnw("failed to unindex session", "user_id", id, "err", err)
	}

	return r.add(conn, new, id)
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, session string) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get conn: %w", err)
	}
	defer conn.Close()

	id, err := redis.Int64(conn.Do("GETDEL", sessionKey(session)))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return model.ErrNoRecord
		}
		return fmt.Errorf("delete session: %w", err)
	}

	if _, err := conn.Do("SREM", userSessionsKey(id), session); err != nil {
		return fmt.Errorf("unindex session: %w", err)
	}

	return nil
}

func (r *RefreshTokenRepository) DeleteByUserID(ctx context.Context, id int64) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get conn: %w", err)
	}
	defer conn.Close()

	sessions, err := redis.Strings(conn.Do("SMEMBERS", userSessionsKey(id)))
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	args := redis.Args{}.Add(userSessionsKey(id))
	for _, s := range sessions {
		args = args.Add(sessionKey(s))
	}

	if _, err := conn.Do("DEL", args...); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}

	return nil
}
