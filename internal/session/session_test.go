package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store honoring TTLs against a fake clock.
type fakeStore struct {
	now    time.Time
	values map[string][]byte
	expiry map[string]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:    time.Now(),
		values: map[string][]byte{},
		expiry: map[string]time.Time{},
	}
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.values[key] = value
	f.expiry[key] = f.now.Add(ttl)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := f.values[key]
	if !ok || f.now.After(f.expiry[key]) {
		return nil, ErrSessionNotFound
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	delete(f.values, key)
	delete(f.expiry, key)
	return nil
}

func TestManager_CreateAndGet(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, time.Hour)

	token, err := m.Create(context.Background(), 42, "drA")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	s, err := m.Get(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), s.DoctorID)
	assert.Equal(t, "drA", s.Username)
}

func TestManager_TokensAreUnique(t *testing.T) {
	m := NewManager(newFakeStore(), time.Hour)

	t1, err := m.Create(context.Background(), 1, "drA")
	require.NoError(t, err)
	t2, err := m.Create(context.Background(), 1, "drA")
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}

func TestManager_UnknownToken(t *testing.T) {
	m := NewManager(newFakeStore(), time.Hour)

	_, err := m.Get(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ExpiredToken(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, time.Minute)

	token, err := m.Create(context.Background(), 1, "drA")
	require.NoError(t, err)

	store.now = store.now.Add(2 * time.Minute)

	_, err = m.Get(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_DestroyInvalidatesServerState(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, time.Hour)

	token, err := m.Create(context.Background(), 1, "drA")
	require.NoError(t, err)

	require.NoError(t, m.Destroy(context.Background(), token))
	assert.Empty(t, store.values, "destroy must delete the stored state, not hide it")

	_, err = m.Get(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_DestroyUnknownTokenIsNoError(t *testing.T) {
	m := NewManager(newFakeStore(), time.Hour)
	assert.NoError(t, m.Destroy(context.Background(), "gone"))
}
