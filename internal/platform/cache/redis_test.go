package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPingsServer(t *testing.T) {
	srv := miniredis.RunT(t)
	client, err := New(context.Background(), srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "rbac:gen:1", 2, 0).Err())
	val, err := srv.Get("rbac:gen:1")
	require.NoError(t, err)
	assert.Equal(t, "2", val)
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := New(context.Background(), addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform/cache: ping")
}
