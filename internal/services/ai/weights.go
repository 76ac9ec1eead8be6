package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"animalfinder/internal/config"
	"animalfinder/internal/logger"
	"animalfinder/internal/model"
	"animalfinder/internal/repository"
)

var _ WeightsProvider = (*WeightsService)(nil)

// WeightsService makes sure the model file is present locally, downloading
// it on first use and tracking its checksum in the weights catalog.
type WeightsService struct {
	path   string
	url    string
	repo   repository.WeightsRepository
	client *http.Client
	logger *logger.Logger
	now    func() time.Time
}

// NewWeightsService creates a WeightsService for the configured model path and URL.
func NewWeightsService(cfg *config.Config, repo repository.WeightsRepository, logger *logger.Logger) *WeightsService {
	return &WeightsService{
		path:   cfg.ModelPath,
		url:    cfg.ModelURL,
		repo:   repo,
		client: &http.Client{Timeout: time.Duration(cfg.DownloadTimeout) * time.Second},
		logger: logger,
		now:    time.Now,
	}
}

// Ensure returns the path of a usable weights file.
//
// A file already on disk is hashed and checked against the catalog. A file the
// catalog says was downloaded but whose checksum no longer matches is fetched
// again; a user-supplied file is simply re-recorded. A missing file is fetched
// from the configured URL.
func (s *WeightsService) Ensure(ctx context.Context) (string, error) {
	info, err := os.Stat(s.path)
	switch {
	case err == nil:
		if !info.Mode().IsRegular() {
			return "", fmt.Errorf("model path %s is not a regular file", s.path)
		}
		sum, size, err := hashFile(s.path)
		if err != nil {
			return "", err
		}

		record, err := s.repo.GetByPath(s.path)
		if err != nil {
			return "", err
		}
		if record != nil && record.SHA256 == sum {
			return s.path, nil
		}
		if record == nil || record.URL == "" {
			if _, err := s.repo.Upsert(&model.Weights{Path: s.path, SHA256: sum, Size: size, FetchedAt: s.now()}); err != nil {
				return "", err
			}
			return s.path, nil
		}
		s.logger.Warning("Checksum of %s does not match the catalog, fetching it again", s.path)

	case errors.Is(err, fs.ErrNotExist):
		if s.url == "" {
			return "", fmt.Errorf("model file not found: %s and MODEL_URL is empty", s.path)
		}

	default:
		return "", fmt.Errorf("cannot access model file: %w", err)
	}

	if err := s.fetch(ctx); err != nil {
		return "", err
	}
	return s.path, nil
}

func (s *WeightsService) fetch(ctx context.Context) error {
	s.logger.Info("Downloading model weights from %s", s.url)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	sum, size, err := s.download(ctx, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to move weights into place: %w", err)
	}

	record := &model.Weights{Path: s.path, URL: s.url, SHA256: sum, Size: size, FetchedAt: s.now()}
	if _, err := s.repo.Upsert(record); err != nil {
		return err
	}
	s.logger.Info("Stored %d bytes of weights at %s", size, s.path)
	return nil
}

func (s *WeightsService) download(ctx context.Context, dst io.Writer) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(dst, hasher), resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("copy weights: %w", err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	hasher := sha256.New()
	size, err := io.Copy(hasher, f)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}
