package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connectfour-backend/testing/suite"
)

func TestNew(t *testing.T) {
	t.Run("Connects to a running redis", func(t *testing.T) {
		ctx, s := suite.New(t)

		client, err := New(ctx, s.RedisAddr)

		require.NoError(t, err)
		require.NoError(t, client.Close())
	})

	t.Run("Fails when nothing listens on the address", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_, err := New(ctx, "127.0.0.1:1")

		require.Error(t, err)
	})
}
