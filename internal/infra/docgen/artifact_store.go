package docgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"job-autopilot/internal/domain/ports/adapter"
)

var _ adapter.ArtifactStore = (*FileArtifactStore)(nil)

// FileArtifactStore writes verification screenshots under one directory,
// keyed by job id so re-submissions overwrite their own evidence.
type FileArtifactStore struct {
	dir string
}

func NewFileArtifactStore(dir string) *FileArtifactStore {
	return &FileArtifactStore{dir: dir}
}

func (s *FileArtifactStore) SaveScreenshot(ctx context.Context, jobID string, png []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(s.dir, jobID+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}
