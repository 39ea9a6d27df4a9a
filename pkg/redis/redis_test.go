package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_RejectsBadURLs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := Open(ctx, "")
	require.ErrorIs(t, err, ErrEmptyURL)

	for _, url := range []string{"http://localhost:6379", "localhost:6379", "memcached://localhost"} {
		client, err := Open(ctx, url)
		require.ErrorIs(t, err, ErrInvalidURL, url)
		require.Nil(t, client)
	}
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrUnhealthy)
}
