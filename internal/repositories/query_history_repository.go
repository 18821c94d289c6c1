package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dbdesk/mysql-admin/internal/models"
	"github.com/redis/go-redis/v9"
)

const queryHistoryKey = "query_history"

// QueryHistoryRepository keeps the most recent free-form queries in a capped
// Redis list, newest first.
type QueryHistoryRepository struct {
	rdb      *redis.Client
	capacity int64
}

func NewQueryHistoryRepository(rdb *redis.Client, capacity int) *QueryHistoryRepository {
	if capacity <= 0 {
		capacity = 100
	}
	return &QueryHistoryRepository{rdb: rdb, capacity: int64(capacity)}
}

func (r *QueryHistoryRepository) Create(ctx context.Context, entry *models.QueryHistory) error {
	entry.Prepare()

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode query history entry: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, queryHistoryKey, payload)
	pipe.LTrim(ctx, queryHistoryKey, 0, r.capacity-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *QueryHistoryRepository) GetRecent(ctx context.Context, limit int) ([]models.QueryHistory, error) {
	if limit <= 0 || int64(limit) > r.capacity {
		limit = int(r.capacity)
	}

	items, err := r.rdb.LRange(ctx, queryHistoryKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	history := make([]models.QueryHistory, 0, len(items))
	for _, item := range items {
		var qh models.QueryHistory
		if err := json.Unmarshal([]byte(item), &qh); err != nil {
			return nil, fmt.Errorf("failed to decode query history entry: %w", err)
		}
		history = append(history, qh)
	}

	return history, nil
}
