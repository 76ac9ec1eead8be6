package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"animalfinder/internal/logger"
)

const (
	AnimalsDir   = "animals"
	NoAnimalsDir = "no_animals"
)

// ErrDestinationExists is returned when a destination subfolder is already present.
var ErrDestinationExists = errors.New("destination folder already exists")

// MoveError reports a file that could not be moved into its destination.
type MoveError struct {
	Src string
	Dst string
	Err error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("failed to move %s to %s: %v", e.Src, e.Dst, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// Destinations holds the two subfolders files are sorted into.
type Destinations struct {
	Animals   string
	NoAnimals string
}

// FolderService enumerates an input folder and moves files out of it.
type FolderService struct {
	logger *logger.Logger
}

func NewFolderService(logger *logger.Logger) *FolderService {
	return &FolderService{logger: logger}
}

// ListFolder returns the direct children of folder sorted by name. Nothing
// is filtered, so subdirectories are listed too.
func (s *FolderService) ListFolder(folder string) ([]string, error) {
	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("cannot access folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", folder)
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(folder, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// CreateDestinations creates the animals and no_animals subfolders. Either
// one already existing is an error.
func (s *FolderService) CreateDestinations(folder string) (Destinations, error) {
	dst := Destinations{
		Animals:   filepath.Join(folder, AnimalsDir),
		NoAnimals: filepath.Join(folder, NoAnimalsDir),
	}

	for _, dir := range []string{dst.Animals, dst.NoAnimals} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			if errors.Is(err, os.ErrExist) {
				return Destinations{}, fmt.Errorf("%w: %s", ErrDestinationExists, dir)
			}
			return Destinations{}, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		s.logger.Debug("Created %s", dir)
	}
	return dst, nil
}

// Move renames src into dstDir keeping its base name. An existing target is
// never overwritten.
func (s *FolderService) Move(src, dstDir string) error {
	target := filepath.Join(dstDir, filepath.Base(src))

	if _, err := os.Lstat(target); err == nil {
		return &MoveError{Src: src, Dst: target, Err: os.ErrExist}
	} else if !errors.Is(err, os.ErrNotExist) {
		return &MoveError{Src: src, Dst: target, Err: err}
	}

	if err := os.Rename(src, target); err != nil {
		return &MoveError{Src: src, Dst: target, Err: err}
	}
	s.logger.Debug("Moved %s to %s", src, target)
	return nil
}
