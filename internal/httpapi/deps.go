package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"ghostcheck-engine/internal/config"
	"ghostcheck-engine/internal/events"
	"ghostcheck-engine/internal/pipeline"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic store for the live config (PUT /config swaps it)
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Pipeline entrypoints (injected for testability)
	RunIngestion      func(ctx context.Context) (pipeline.Result, error)
	RunReverification func(ctx context.Context) (pipeline.SweepResult, error)
	PipelineStatus    func() pipeline.Status
}
