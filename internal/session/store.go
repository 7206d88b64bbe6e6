package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/liver-report/internal/model"
)

// ResultKey is the per-session key holding the cached prediction result.
const ResultKey = "predictionResult"

// ErrNoResult is returned when a session has no cached prediction.
var ErrNoResult = errors.New("session: no prediction result")

// Store keeps session-scoped values. Implementations must treat a missing
// key as ErrNoResult rather than an empty value.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

func resultKey(id string) string {
	return id + ":" + ResultKey
}

// Session is the explicit handle shared by the submit and download steps.
type Session struct {
	id    string
	store Store
}

// New starts a session with a fresh id.
func New(store Store) *Session {
	return &Session{id: uuid.NewString(), store: store}
}

// Open resumes the session identified by id.
func Open(store Store, id string) *Session {
	return &Session{id: id, store: store}
}

func (s *Session) ID() string {
	return s.id
}

// Result returns the cached prediction, or ErrNoResult.
func (s *Session) Result(ctx context.Context) (model.CachedResult, error) {
	data, err := s.store.Get(ctx, resultKey(s.id))
	if err != nil {
		return nil, err
	}
	var res model.CachedResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	if res == nil {
		return nil, ErrNoResult
	}
	return res, nil
}

// SetResult overwrites the cached prediction.
func (s *Session) SetResult(ctx context.Context, res model.CachedResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode cached result: %w", err)
	}
	return s.store.Set(ctx, resultKey(s.id), data)
}

// End drops everything cached for the session.
func (s *Session) End(ctx context.Context) error {
	return s.store.Delete(ctx, resultKey(s.id))
}
