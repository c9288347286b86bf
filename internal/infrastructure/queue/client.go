package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"medinfo-backend/pkg/logger"
)

// Client enqueues background tasks from the API process. It implements
// the deferred asset deleter the catalog service falls back to when an
// inline object delete fails.
type Client struct {
	client *asynq.Client
}

func NewClient(redisAddr, password string, db int) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: password,
			DB:       db,
		}),
	}
}

// EnqueueAssetDelete schedules a retry of a failed object delete.
// Asynq retries with its own backoff; five attempts spread over hours
// outlive any transient object-store outage worth waiting for.
func (c *Client) EnqueueAssetDelete(ctx context.Context, assetURL string) error {
	payload, err := json.Marshal(AssetDeletePayload{URL: assetURL})
	if err != nil {
		return fmt.Errorf("marshal asset delete payload: %w", err)
	}

	task := asynq.NewTask(TypeAssetDelete, payload)
	info, err := c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueAssets),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
		asynq.ProcessIn(time.Minute),
	)
	if err != nil {
		return fmt.Errorf("enqueue asset delete: %w", err)
	}

	logger.Info("Deferred asset delete enqueued", map[string]interface{}{
		"task_id": info.ID,
		"url":     assetURL,
	})
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
