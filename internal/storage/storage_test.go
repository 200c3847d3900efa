package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "settings-storage")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Set(ctx, "settings-storage", []byte(`{"state":{}}`)))
	got, err := b.Get(ctx, "settings-storage")
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{}}`, string(got))

	require.NoError(t, b.Set(ctx, "settings-storage", []byte(`{"state":{"language":"fr"}}`)))
	got, err = b.Get(ctx, "settings-storage")
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{"language":"fr"}}`, string(got))

	require.NoError(t, b.Delete(ctx, "settings-storage"))
	require.NoError(t, b.Delete(ctx, "settings-storage"))
	_, err = b.Get(ctx, "settings-storage")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend())
}

func TestMemoryBackendCopiesValues(t *testing.T) {
	b := NewMemoryBackend()
	buf := []byte("abc")
	require.NoError(t, b.Set(context.Background(), "k", buf))
	buf[0] = 'x'
	got, err := b.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileBackend(t *testing.T) {
	fs := afero.NewMemMapFs()
	b, err := NewFileBackend(fs, "/state")
	require.NoError(t, err)
	exerciseBackend(t, b)
}

func TestFileBackendSanitisesKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	b, err := NewFileBackend(fs, "/state")
	require.NoError(t, err)
	require.NoError(t, b.Set(context.Background(), "../escape", []byte("{}")))

	exists, err := afero.Exists(fs, "/state/_escape.json")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFileBackendRequiresDir(t *testing.T) {
	_, err := NewFileBackend(afero.NewMemMapFs(), "")
	assert.Error(t, err)
}

func TestWithPrefix(t *testing.T) {
	inner := NewMemoryBackend()
	b := WithPrefix(inner, "alice:")
	exerciseBackend(t, b)

	require.NoError(t, b.Set(context.Background(), "auth-storage", []byte("{}")))
	assert.Equal(t, []string{"alice:auth-storage"}, inner.Keys())
	assert.Same(t, inner, WithPrefix(inner, "").(*MemoryBackend))
}

func TestStoreWithoutPool(t *testing.T) {
	var s *Store
	_, err := s.Get(context.Background(), "k")
	assert.True(t, errors.Is(err, ErrNotConfigured))

	s = NewStore(nil)
	assert.ErrorIs(t, s.Set(context.Background(), "k", nil), ErrNotConfigured)
	_, err = s.Trades(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, _, err = s.TryAdvisoryLock(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	s.Close()
}
