package app

import (
	"context"
	"fmt"

	"animalfinder/internal/config"
	"animalfinder/internal/logger"
	"animalfinder/internal/progress"
	"animalfinder/internal/repository/sqlite"
	"animalfinder/internal/services"
	"animalfinder/internal/services/ai"
	"animalfinder/internal/services/display"
	"animalfinder/internal/services/imageio"
	"animalfinder/internal/services/storage"

	"go.uber.org/multierr"
)

const (
	ModeSort    = "sort"
	ModeDisplay = "display"
)

type App struct {
	config   *config.Config
	logger   *logger.Logger
	db       *sqlite.DB
	detector *ai.DetectorService
	manager  *services.Manager
}

// NewApp wires every service from cfg. The model itself is not loaded until
// the first image is processed.
func NewApp(cfg *config.Config, log *logger.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sqlite.New(cfg.WeightsCatalogPath())
	if err != nil {
		return nil, err
	}

	weights := ai.NewWeightsService(cfg, sqlite.NewWeightsRepository(db), log)
	detector := ai.NewDetectorService(weights, backendFactory(cfg), log)

	mng := services.NewManager(
		imageio.NewLoader(log),
		detector,
		storage.NewFolderService(log),
		display.NewViewer(cfg, log),
		progress.NewTerminal(),
		log,
	)

	return &App{
		config:   cfg,
		logger:   log,
		db:       db,
		detector: detector,
		manager:  mng,
	}, nil
}

func backendFactory(cfg *config.Config) ai.BackendFactory {
	if cfg.Backend == config.BackendONNXRuntime {
		return ai.NewONNXRuntimeFactory(ai.ONNXRuntimeOptions{
			LibraryPath: cfg.ONNXRuntimeLib,
			InputName:   cfg.ONNXInputName,
			OutputName:  cfg.ONNXOutputName,
		})
	}
	return ai.NewOpenCVBackend
}

// Run processes folder in the given mode.
func (a *App) Run(ctx context.Context, mode, folder string) error {
	a.logger.Info("Running in %s mode on %s (backend %s)", mode, folder, a.config.Backend)

	switch mode {
	case ModeSort:
		_, err := a.manager.Sort(ctx, folder)
		return err
	case ModeDisplay:
		return a.manager.Display(ctx, folder)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// Close releases the model and the weights catalog.
func (a *App) Close() error {
	return multierr.Combine(a.detector.Close(), a.db.Close())
}
