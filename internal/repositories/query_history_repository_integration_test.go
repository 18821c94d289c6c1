//go:build integration

package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/dbdesk/mysql-admin/internal/models"
)

func TestQueryHistoryRepository(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })

	repo := NewQueryHistoryRepository(rdb, 3)

	for i := 1; i <= 5; i++ {
		entry := &models.QueryHistory{QueryText: fmt.Sprintf("SELECT %d", i), Database: "shop", Success: true}
		require.NoError(t, repo.Create(ctx, entry))
		assert.NotEmpty(t, entry.ID)
		assert.False(t, entry.ExecutedAt.IsZero())
	}

	recent, err := repo.GetRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "SELECT 5", recent[0].QueryText)
	assert.Equal(t, "SELECT 3", recent[2].QueryText)

	recent, err = repo.GetRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "shop", recent[0].Database)
}
