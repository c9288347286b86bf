package main

import (
	"context"

	"github.com/hibiken/asynq"

	"medinfo-backend/internal/infrastructure/queue"
	"medinfo-backend/internal/infrastructure/queue/handlers"
	"medinfo-backend/pkg/container"
)

// HandlerRegistry binds task types to their handlers.
type HandlerRegistry struct {
	handlers map[string]func(ctx context.Context, t *asynq.Task) error
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		handlers: map[string]func(ctx context.Context, t *asynq.Task) error{
			queue.TypeAssetDelete: handlers.AssetDeleteHandler(c.Objects),
			queue.TypeOrphanSweep: handlers.OrphanSweepHandler(c.DocStore, c.Objects),
		},
	}
}

// RegisterHandlers mounts every handler on the serve mux.
func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	for taskType, h := range r.handlers {
		mux.HandleFunc(taskType, h)
	}
}
