// Package scratch provides per-export build workspaces.
package scratch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/reglet-dev/scenepack/internal/application/ports"
	"github.com/reglet-dev/scenepack/internal/domain/values"
)

const dirPrefix = "scenepack-"

// Provider creates workspaces under a base directory, one per build id.
type Provider struct {
	baseDir string
	logger  *slog.Logger
}

// NewProvider creates a provider. An empty baseDir uses os.TempDir().
func NewProvider(baseDir string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{baseDir: baseDir, logger: logger}
}

// Acquire creates the workspace directory for id. It fails if the directory
// already exists so two exports never share a workspace.
func (p *Provider) Acquire(id values.BuildID, keep bool) (ports.Workspace, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("build id is required")
	}

	base := p.baseDir
	if base == "" {
		base = os.TempDir()
	}
	if err := os.MkdirAll(base, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create scratch base %s: %w", base, err)
	}

	abs, err := filepath.Abs(filepath.Join(base, dirPrefix+id.String()))
	if err != nil {
		return nil, fmt.Errorf("resolving scratch path: %w", err)
	}
	if err := os.Mkdir(abs, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create scratch workspace: %w", err)
	}

	p.logger.Debug("scratch workspace acquired", "dir", abs, "keep", keep)
	return &Workspace{id: id, dir: abs, keep: keep, logger: p.logger}, nil
}

// Workspace is a scratch directory owned by one export.
type Workspace struct {
	id     values.BuildID
	dir    string
	keep   bool
	logger *slog.Logger

	once       sync.Once
	releaseErr error
}

// ID returns the build id the workspace belongs to.
func (w *Workspace) ID() values.BuildID { return w.id }

// Dir returns the absolute workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path joins name onto the workspace directory.
func (w *Workspace) Path(name string) string { return filepath.Join(w.dir, name) }

// Release removes the workspace unless it is kept. Calling it again is a no-op.
func (w *Workspace) Release() error {
	w.once.Do(func() {
		if w.keep {
			w.logger.Info("scratch workspace kept", "dir", w.dir)
			return
		}
		if err := os.RemoveAll(w.dir); err != nil {
			w.releaseErr = fmt.Errorf("failed to remove scratch workspace: %w", err)
		}
	})
	return w.releaseErr
}
