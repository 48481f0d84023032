// Package session はセッション単位のアプリケーション状態をRedisに保存します。
package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"fire_backend/internal/feature/firedetection/domain/entity"
	"fire_backend/internal/feature/firedetection/usecase"
)

const (
	fieldFireCount  = "fire_count"
	fieldLastFireID = "last_fire_id"
	fieldMode       = "mode"
)

// recordFireScript はlast_fire_idが異なる場合だけfire_countを加算します。
// 読み取りと更新を1回の実行にまとめ、同時リクエストでも二重計上しません。
var recordFireScript = redis.NewScript(`
local last = redis.call('HGET', KEYS[1], 'last_fire_id')
if last ~= ARGV[1] then
  redis.call('HINCRBY', KEYS[1], 'fire_count', 1)
  redis.call('HSET', KEYS[1], 'last_fire_id', ARGV[1])
end
return redis.call('HMGET', KEYS[1], 'fire_count', 'last_fire_id', 'mode')
`)

// StateRedis implements usecase.StateRepository using Redis hashes.
type StateRedis struct {
	client      *redis.Client
	prefix      string
	defaultMode entity.Mode
}

var _ usecase.StateRepository = (*StateRedis)(nil)

// NewStateRedis creates a new StateRedis instance.
func NewStateRedis(client *redis.Client, prefix string) *StateRedis {
	return &StateRedis{
		client:      client,
		prefix:      prefix,
		defaultMode: entity.DefaultMode,
	}
}

// WithDefaultMode sets the mode reported for sessions that never chose one.
func (r *StateRedis) WithDefaultMode(mode entity.Mode) *StateRedis {
	if mode != "" {
		r.defaultMode = mode
	}
	return r
}

// stateKey returns the Redis key for a session's state hash.
func (r *StateRedis) stateKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

// Get returns the session state, or a zero state in the default mode when none exists.
func (r *StateRedis) Get(ctx context.Context, sessionID string) (*entity.SessionState, error) {
	fields, err := r.client.HGetAll(ctx, r.stateKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read state for %s: %w", sessionID, err)
	}
	return r.decodeState(sessionID, fields[fieldFireCount], fields[fieldLastFireID], fields[fieldMode])
}

// RecordFire counts fireID once per distinct id and returns the updated state.
func (r *StateRedis) RecordFire(ctx context.Context, sessionID, fireID string) (*entity.SessionState, error) {
	res, err := recordFireScript.Run(ctx, r.client, []string{r.stateKey(sessionID)}, fireID).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to record fire for %s: %w", sessionID, err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("unexpected script reply length %d", len(res))
	}
	return r.decodeState(sessionID, str(res[0]), str(res[1]), str(res[2]))
}

// SetMode stores the detection mode for the session.
func (r *StateRedis) SetMode(ctx context.Context, sessionID string, mode entity.Mode) (*entity.SessionState, error) {
	if err := r.client.HSet(ctx, r.stateKey(sessionID), fieldMode, string(mode)).Err(); err != nil {
		return nil, fmt.Errorf("failed to set mode for %s: %w", sessionID, err)
	}
	return r.Get(ctx, sessionID)
}

func (r *StateRedis) decodeState(sessionID, count, lastFireID, mode string) (*entity.SessionState, error) {
	st := &entity.SessionState{
		SessionID:  sessionID,
		LastFireID: lastFireID,
		Mode:       r.defaultMode,
	}
	if count != "" {
		n, err := strconv.ParseInt(count, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt fire_count %q for %s: %w", count, sessionID, err)
		}
		st.FireCount = n
	}
	if mode != "" {
		m, err := entity.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		st.Mode = m
	}
	return st, nil
}

// str converts a Lua reply element (string or nil) to a string.
func str(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}
