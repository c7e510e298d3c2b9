package oauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/botway/internal/store"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "auth/conv1/user1", Key("conv1", "user1"))
}

func TestRetryable(t *testing.T) {
	for _, status := range []int{400, 404, 412} {
		assert.True(t, Retryable(status), "status %d", status)
	}
	for _, status := range []int{401, 403, 429, 500, 503} {
		assert.False(t, Retryable(status), "status %d", status)
	}
}

func TestPendingSignIn_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	key := Key("conv1", "user1")

	_, ok, err := Load(ctx, s, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Save(ctx, s, key, PendingSignIn{ConnectionName: "graph"}))

	p, ok, err := Load(ctx, s, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "graph", p.ConnectionName)

	require.NoError(t, Clear(ctx, s, key))
	_, ok, err = Load(ctx, s, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
