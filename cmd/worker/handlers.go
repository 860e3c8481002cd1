package main

import (
	"github.com/hibiken/asynq"

	convJob "img2pdf-backend/internal/domains/conversion/job"
	"img2pdf-backend/internal/shared"
	"img2pdf-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	cleanupStale *convJob.CleanupStaleConversionsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		cleanupStale: convJob.NewCleanupStaleConversionsHandler(
			c.ConversionRepo,
			c.ImageRepo,
			c.Storage,
			c.Config.Jobs,
		),
	}
}

// RegisterHandlers wires task types to their handlers
func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.Handle(shared.TypeCleanupStaleConversions, r.cleanupStale)
}
