package handlers

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"medinfo-backend/internal/catalog"
	"medinfo-backend/internal/docstore"
	"medinfo-backend/internal/infrastructure/queue"
	"medinfo-backend/internal/infrastructure/storage"
	"medinfo-backend/pkg/logger"
)

// ObjectLister is what the sweep needs from the object store.
type ObjectLister interface {
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	DeleteKey(ctx context.Context, key string) error
}

// OrphanSweepHandler walks the bucket and deletes objects no document
// references anymore. An object is kept as soon as any asset slot in
// any collection points at it; lookups are Limit-1 existence probes.
func OrphanSweepHandler(store docstore.Store, objects ObjectLister) func(ctx context.Context, t *asynq.Task) error {
	schemas := catalog.Registry()

	return func(ctx context.Context, t *asynq.Task) error {
		var p queue.OrphanSweepPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return asynq.SkipRetry
		}
		if p.Limit <= 0 {
			p.Limit = 500
		}

		keys, err := objects.ListKeys(ctx, "")
		if err != nil {
			return err
		}

		swept := 0
		for _, key := range keys {
			if swept >= p.Limit {
				break
			}

			referenced, err := keyReferenced(ctx, store, schemas, key)
			if err != nil {
				return err
			}
			if referenced {
				continue
			}

			if err := objects.DeleteKey(ctx, key); err != nil {
				logger.Warn("orphan sweep delete failed", map[string]interface{}{
					"key": key, "error": err.Error(),
				})
				continue
			}
			swept++
		}

		logger.Info("Orphan sweep completed", map[string]interface{}{
			"scanned": len(keys),
			"swept":   swept,
		})
		return nil
	}
}

// keyReferenced probes every declared asset slot for a URL containing
// the bucket key. Thumbnails are never referenced by documents
// directly; they live and die with their originals, so a thumbnail
// key is probed through its original's key prefix.
func keyReferenced(ctx context.Context, store docstore.Store, schemas []catalog.Schema, key string) (bool, error) {
	if base, ok := storage.BaseKeyPrefixForThumb(key); ok {
		key = base
	}
	for _, schema := range schemas {
		for _, slot := range schema.AssetSlots {
			docs, err := store.Find(ctx, schema.Collection, docstore.Query{
				Contains: &docstore.Contains{Field: slot.Field, Value: key},
				Limit:    1,
			})
			if err != nil {
				return false, err
			}
			if len(docs) > 0 {
				return true, nil
			}
		}
	}
	return false, nil
}
