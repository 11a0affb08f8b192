package dock

import (
	"github.com/taskdock/taskdock/internal/core/config"
	"github.com/taskdock/taskdock/internal/core/kv"
	"github.com/taskdock/taskdock/internal/data/db"
)

// App bundles the shared dependencies commands need.
type App struct {
	Service *Service
	Config  *config.Config
	KV      kv.KV
	DB      *db.DB
	Version string
}

// NewApp creates the command-facing application handle.
func NewApp(svc *Service, cfg *config.Config, store kv.KV, database *db.DB, version string) *App {
	return &App{
		Service: svc,
		Config:  cfg,
		KV:      store,
		DB:      database,
		Version: version,
	}
}
