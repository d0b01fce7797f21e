package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/haint/paperlens/utils"
)

// Stager writes uploaded bytes to a filesystem path a path-based document
// loader can read. Implementations must guarantee the staged area never
// collides with concurrent requests and never survives past its cleanup.
type Stager interface {
	Stage(r io.Reader, fileName string) (path string, cleanup func(), err error)
}

// StagingService stages uploads under a base directory, one uniquely named
// directory per file.
type StagingService struct {
	baseDir string
}

func NewStagingService(baseDir string) *StagingService {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &StagingService{baseDir: baseDir}
}

// Stage copies r into a fresh directory and returns the staged file path
// together with a cleanup that removes the whole directory. On error the
// directory is already gone and no cleanup is returned. cleanup is safe to
// call more than once.
func (s *StagingService) Stage(r io.Reader, fileName string) (string, func(), error) {
	dir := filepath.Join(s.baseDir, "paperlens-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	dst := filepath.Join(dir, utils.SanitizeFileName(fileName))
	f, err := os.Create(dst)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to create staged file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write staged file: %w", err)
	}
	return dst, cleanup, nil
}
