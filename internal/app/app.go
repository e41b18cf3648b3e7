package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tochi-dev/medisync/internal/config"
	"github.com/tochi-dev/medisync/internal/core"
	"github.com/tochi-dev/medisync/internal/core/airquality"
	db "github.com/tochi-dev/medisync/internal/core/database"
	"github.com/tochi-dev/medisync/internal/core/extract"
	"github.com/tochi-dev/medisync/internal/core/llm"
	objectclient "github.com/tochi-dev/medisync/internal/core/object-client"
	"github.com/tochi-dev/medisync/internal/services"
)

type App struct {
	DBClient    core.DbClient
	Extractor   *llm.GeminiExtractor
	AirQuality  *airquality.Poller
	Resources   *services.ResourceService
	Allocations *services.AllocationService
	Server      *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("database initialized and ready")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}

	gemini, err := llm.NewGeminiExtractor(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, err
	}

	textExtractor := extract.NewDocconvExtractor(false)

	resourceSvc := services.NewResourceService(dbClient, objClient, textExtractor, gemini, cfg.BucketName)
	allocationSvc := services.NewAllocationService(dbClient, cfg.LowStockThreshold)

	poller := airquality.NewPoller(
		cfg.AirQualityURL, cfg.AirQualityKey, cfg.AirQualityCity,
		time.Duration(cfg.AirQualityPollMin)*time.Minute,
	)
	poller.Start(ctx)

	server := NewServer(cfg, dbClient, resourceSvc, allocationSvc, poller)

	return &App{
		DBClient:    dbClient.(*db.DatabaseClient),
		Extractor:   gemini,
		AirQuality:  poller,
		Resources:   resourceSvc,
		Allocations: allocationSvc,
		Server:      server,
	}, nil
}

func (a *App) Close() {
	if a.Extractor != nil {
		_ = a.Extractor.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
