package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/liver-report/internal/model"
	"github.com/jwalitptl/liver-report/pkg/security"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreFromClient(client, "", ttl), mr
}

func storeContract(t *testing.T, store Store) {
	ctx := context.Background()
	s := New(store)

	_, err := s.Result(ctx)
	assert.ErrorIs(t, err, ErrNoResult)

	first := model.NewCachedResult(map[string]interface{}{"stage": "No Cirrhosis."}, "Jane Doe")
	require.NoError(t, s.SetResult(ctx, first))

	got, err := Open(store, s.ID()).Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got.PatientName())
	assert.Equal(t, "No Cirrhosis.", got.Stage())

	second := model.NewCachedResult(map[string]interface{}{"stage": "Severe Cirrhosis (Stage 3)."}, "John Roe")
	require.NoError(t, s.SetResult(ctx, second))
	got, err = s.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, "John Roe", got.PatientName())

	_, err = New(store).Result(ctx)
	assert.ErrorIs(t, err, ErrNoResult, "sessions are isolated")

	require.NoError(t, s.End(ctx))
	_, err = s.Result(ctx)
	assert.ErrorIs(t, err, ErrNoResult)

	assert.NoError(t, store.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore(time.Hour, time.Minute))
}

func newSealer(t *testing.T) *security.Sealer {
	t.Helper()
	sealer, err := security.NewSealer([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return sealer
}

func TestEncryptedStore(t *testing.T) {
	inner, mr := newRedisStore(t, time.Hour)
	store := NewEncryptedStore(inner, newSealer(t))
	storeContract(t, store)

	ctx := context.Background()
	s := New(store)
	require.NoError(t, s.SetResult(ctx, model.NewCachedResult(nil, "Jane Doe")))

	raw, err := mr.Get("liver-report:session:" + resultKey(s.ID()))
	require.NoError(t, err)
	assert.NotContains(t, raw, "Jane Doe")

	// A value moved under another session's key does not open.
	other := New(store)
	require.NoError(t, inner.Set(ctx, resultKey(other.ID()), []byte(raw)))
	_, err = other.Result(ctx)
	assert.ErrorIs(t, err, security.ErrOpen)
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, time.Hour)
	storeContract(t, store)
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemoryStore(20*time.Millisecond, time.Minute)
	s := New(store)
	require.NoError(t, s.SetResult(context.Background(), model.NewCachedResult(nil, "Jane")))
	assert.Equal(t, 1, store.Len())

	time.Sleep(40 * time.Millisecond)
	_, err := s.Result(context.Background())
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestRedisStoreExpires(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	s := New(store)
	require.NoError(t, s.SetResult(context.Background(), model.NewCachedResult(nil, "Jane")))

	assert.True(t, mr.Exists("liver-report:session:"+s.ID()+":predictionResult"))
	mr.FastForward(2 * time.Minute)

	_, err := s.Result(context.Background())
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestResultRejectsMalformedJSON(t *testing.T) {
	store := NewMemoryStore(time.Hour, time.Minute)
	s := New(store)
	require.NoError(t, store.Set(context.Background(), resultKey(s.ID()), []byte("{not json")))

	_, err := s.Result(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResult)
}

func TestTokens(t *testing.T) {
	tokens, err := NewTokens("0123456789abcdef-secret", time.Hour)
	require.NoError(t, err)

	id := uuid.NewString()
	tok, err := tokens.Issue(id)
	require.NoError(t, err)

	got, err := tokens.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	other, err := NewTokens("another-secret-of-16b", time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	bad, err := tokens.Issue("not-a-uuid")
	require.NoError(t, err)
	_, err = tokens.Parse(bad)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRequireSecret(t *testing.T) {
	_, err := NewTokens("short", time.Hour)
	assert.Error(t, err)

	secret := RandomSecret()
	assert.Len(t, secret, 64)
	assert.NotEqual(t, secret, RandomSecret())
	_, err = NewTokens(secret, time.Hour)
	assert.NoError(t, err)
}
