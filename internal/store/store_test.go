package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/botway/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(nil, "silent")
}

func TestMemory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "auth/conv1/user1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "auth/conv1/user1", []byte(`{"connectionName":"graph"}`)))

	v, ok, err := m.Get(ctx, "auth/conv1/user1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"connectionName":"graph"}`, string(v))

	require.NoError(t, m.Delete(ctx, "auth/conv1/user1"))
	_, ok, err = m.Get(ctx, "auth/conv1/user1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_Overwrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", []byte("one")))
	require.NoError(t, m.Set(ctx, "k", []byte("two")))

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", string(v))
	assert.Equal(t, 1, m.Len())
}

func TestMemory_DeleteMissingIsNoop(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Delete(context.Background(), "never-set"))
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()

	db, err := OpenSQLite(":memory:", testLogger())
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.Get(ctx, "auth/conv1/user1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Set(ctx, "auth/conv1/user1", []byte(`{"connectionName":"graph"}`)))

	v, ok, err := db.Get(ctx, "auth/conv1/user1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"connectionName":"graph"}`, string(v))

	// Upsert replaces the value.
	require.NoError(t, db.Set(ctx, "auth/conv1/user1", []byte(`{"connectionName":"jira"}`)))
	v, ok, err = db.Get(ctx, "auth/conv1/user1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"connectionName":"jira"}`, string(v))

	require.NoError(t, db.Delete(ctx, "auth/conv1/user1"))
	_, ok, err = db.Get(ctx, "auth/conv1/user1")
	require.NoError(t, err)
	assert.False(t, ok)
}
