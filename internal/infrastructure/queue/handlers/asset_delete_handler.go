package handlers

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"medinfo-backend/internal/infrastructure/queue"
	"medinfo-backend/pkg/logger"
)

// ObjectDeleter is what the retry handler needs from the object store.
type ObjectDeleter interface {
	Delete(ctx context.Context, assetURL string) error
}

// AssetDeleteHandler retries an object delete that failed inline during
// an entity mutation. The document is already gone or repointed; only
// the stale object remains.
func AssetDeleteHandler(objects ObjectDeleter) func(ctx context.Context, t *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p queue.AssetDeletePayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry // malformed payload, retrying cannot help
		}

		if err := objects.Delete(ctx, p.URL); err != nil {
			return err // transient store error, let asynq retry
		}

		logger.Info("Deferred asset delete completed", map[string]interface{}{
			"url": p.URL,
		})
		return nil
	}
}
