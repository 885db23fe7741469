package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/events"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic stores
	CfgVal    *atomic.Value // stores config.Config
	RunStatus *atomic.Value // stores httpapi.RunStatus

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Discovery entrypoints (injected for testability)
	RunSession func(ctx context.Context, cfg config.Config) (domain.ScrapingSession, error)
	Rescore    func(ctx context.Context, cfg config.Config) (matched int, err error)
}
