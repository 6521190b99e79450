package main

import (
	"log/slog"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/bus"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/categorization"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/ingest/repository"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/ingest/service"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/insights"
	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/domain/refresh"
	"github.com/jkmdale/your-ai-finance-brain-sub003/pkg/config"
	"github.com/jkmdale/your-ai-finance-brain-sub003/pkg/cron"
	"github.com/jkmdale/your-ai-finance-brain-sub003/pkg/db"
)

// dependencies wires the pipeline: repository → services → bus → refresh
// coordinator → scheduler.
type dependencies struct {
	Bus            *bus.Bus
	Repo           repository.ImportRepository
	Imports        *service.ImportService
	Insights       *insights.Service
	Categorization *categorization.Service
	Refresh        *refresh.Coordinator
	Scheduler      *cron.Scheduler
}

func buildDependencies(cfg *config.Config, database *db.DB, logger *slog.Logger) *dependencies {
	eventBus := bus.New()
	repo := repository.NewPostgresImportRepository(database.Pool)

	insightsSvc := insights.NewService(repo, logger)

	return &dependencies{
		Bus:            eventBus,
		Repo:           repo,
		Imports:        service.NewImportService(repo, eventBus, logger),
		Insights:       insightsSvc,
		Categorization: categorization.NewService(repo, eventBus, logger),
		Refresh:        refresh.NewCoordinator(eventBus, insightsSvc, cfg.Refresh, logger),
		Scheduler:      cron.NewScheduler(insightsSvc, logger),
	}
}

func (d *dependencies) Close() {
	d.Scheduler.Stop()
	d.Refresh.Close()
}
