package services

import (
	"context"
	"fmt"

	"animalfinder/internal/logger"
	"animalfinder/internal/model"
	"animalfinder/internal/progress"
	"animalfinder/internal/services/imageio"
	"animalfinder/internal/services/storage"
)

type ImageLoader interface {
	Load(path string) (*imageio.Raster, error)
	ValidateAll(paths []string, step func()) []imageio.ValidationResult
}

type Detector interface {
	Detect(ctx context.Context, raster *imageio.Raster) ([]model.Detection, error)
}

type Folder interface {
	ListFolder(folder string) ([]string, error)
	CreateDestinations(folder string) (storage.Destinations, error)
	Move(src, dstDir string) error
}

type Viewer interface {
	Show(ctx context.Context, raster *imageio.Raster, detections []model.Detection) error
}

// SortSummary counts the files moved into each destination.
type SortSummary struct {
	Animals   int
	NoAnimals int
}

// Manager routes every image of a folder according to its detections.
type Manager struct {
	loader   ImageLoader
	detector Detector
	folder   Folder
	viewer   Viewer
	progress progress.Reporter
	logger   *logger.Logger
}

func NewManager(loader ImageLoader, detector Detector, folder Folder, viewer Viewer, reporter progress.Reporter, logger *logger.Logger) *Manager {
	return &Manager{
		loader:   loader,
		detector: detector,
		folder:   folder,
		viewer:   viewer,
		progress: reporter,
		logger:   logger,
	}
}

// Sort moves every file of folder into animals or no_animals. All files are
// validated first and nothing is touched if any of them cannot be decoded.
func (m *Manager) Sort(ctx context.Context, folder string) (SortSummary, error) {
	var summary SortSummary

	paths, err := m.folder.ListFolder(folder)
	if err != nil {
		return summary, err
	}
	m.logger.Info("Found %d file(s) in %s", len(paths), folder)

	bar := m.progress.Start("Validating images", len(paths))
	results := m.loader.ValidateAll(paths, bar.Increment)
	bar.Stop()
	if err := imageio.CheckResults(results); err != nil {
		return summary, err
	}

	dst, err := m.folder.CreateDestinations(folder)
	if err != nil {
		return summary, err
	}

	bar = m.progress.Start("Sorting images", len(paths))
	defer bar.Stop()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		detections, err := m.detect(ctx, path)
		if err != nil {
			return summary, err
		}

		target := dst.NoAnimals
		if len(detections) > 0 {
			target = dst.Animals
		}
		if err := m.folder.Move(path, target); err != nil {
			return summary, err
		}
		if target == dst.Animals {
			summary.Animals++
		} else {
			summary.NoAnimals++
		}
		bar.Increment()
	}

	m.logger.Info("Sorted %s: %d with animals, %d without", folder, summary.Animals, summary.NoAnimals)
	m.progress.Success(fmt.Sprintf("%d image(s) with animals, %d without", summary.Animals, summary.NoAnimals))
	return summary, nil
}

// Display shows every image of folder that has at least one detection, one
// at a time. Images without detections are skipped silently.
func (m *Manager) Display(ctx context.Context, folder string) error {
	paths, err := m.folder.ListFolder(folder)
	if err != nil {
		return err
	}

	bar := m.progress.Start("Reviewing images", len(paths))
	defer bar.Stop()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.displayOne(ctx, path); err != nil {
			return err
		}
		bar.Increment()
	}
	return nil
}

func (m *Manager) displayOne(ctx context.Context, path string) error {
	raster, err := m.loader.Load(path)
	if err != nil {
		return err
	}
	defer raster.Close()

	detections, err := m.detector.Detect(ctx, raster)
	if err != nil {
		return err
	}
	if len(detections) == 0 {
		m.logger.Debug("No detections in %s", path)
		return nil
	}
	return m.viewer.Show(ctx, raster, detections)
}

func (m *Manager) detect(ctx context.Context, path string) ([]model.Detection, error) {
	raster, err := m.loader.Load(path)
	if err != nil {
		return nil, err
	}
	defer raster.Close()

	return m.detector.Detect(ctx, raster)
}
