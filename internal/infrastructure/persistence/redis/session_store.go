package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"draft-scout-api/internal/domain/entity"
)

var sessionTracer = otel.Tracer("redis.session")

// SessionStore keeps conversation turns in a bounded Redis list, one list
// per session, newest at the tail. Every write refreshes the session TTL.
type SessionStore struct {
	client   *Client
	maxTurns int
	ttl      time.Duration
}

// NewSessionStore creates a session store.
func NewSessionStore(client *Client, maxTurns int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		maxTurns: maxTurns,
		ttl:      ttl,
	}
}

func sessionKey(sessionID string) string {
	return "session:turns:" + sessionID
}

// Append adds turns to the session history, trimming to the bound.
func (s *SessionStore) Append(ctx context.Context, sessionID string, turns ...entity.Turn) error {
	ctx, span := sessionTracer.Start(ctx, "session.Append",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.Int("session.turn_count", len(turns)),
		))
	defer span.End()

	if len(turns) == 0 {
		return nil
	}

	key := sessionKey(sessionID)
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		raw, err := json.Marshal(t)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to marshal turn: %w", err)
		}
		values = append(values, raw)
	}

	pipe := s.client.rdb.Pipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	pipe.Expire(ctx, key, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append turns: %w", err)
	}
	return nil
}

// History returns the session turns, oldest first. A missing session
// yields an empty slice.
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]entity.Turn, error) {
	ctx, span := sessionTracer.Start(ctx, "session.History",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	raws, err := s.client.rdb.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read session history: %w", err)
	}

	turns := make([]entity.Turn, 0, len(raws))
	for _, raw := range raws {
		var t entity.Turn
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to unmarshal turn: %w", err)
		}
		turns = append(turns, t)
	}

	span.SetAttributes(attribute.Int("session.history_len", len(turns)))
	return turns, nil
}

// Reset drops the session history. Resetting a session that never
// existed is not an error.
func (s *SessionStore) Reset(ctx context.Context, sessionID string) error {
	ctx, span := sessionTracer.Start(ctx, "session.Reset",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	return s.client.rdb.Del(ctx, sessionKey(sessionID)).Err()
}
