package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dunamismax/pixelopt/internal/domain"
)

// Emitter persists one encoded variant.
type Emitter interface {
	Emit(ctx context.Context, path string, data []byte) error
}

// LocalFileEmitter writes variants to disk, creating parent directories as
// needed. Existing files are replaced.
type LocalFileEmitter struct{}

func (LocalFileEmitter) Emit(_ context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: create output dir: %v", domain.ErrIO, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write output file: %v", domain.ErrIO, err)
	}
	return nil
}
