package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ErikKalkoken/go-set"

	"missingstar/internal/logger"
	"missingstar/internal/models"
)

// ExportService owns the chart output directory and copies charts out of it.
//
// With no directory configured it creates a private one under the system temp dir and
// removes it on shutdown. A configured directory is never removed: only the chart
// files this process wrote there are, and only when keep is false.
type ExportService struct {
	outputDir string
	owned     bool
	keep      bool
	logger    logger.Logger

	mu      sync.Mutex
	written set.Set[string]
}

func NewExportService(outputDir string, keep bool, log logger.Logger) (*ExportService, error) {
	es := &ExportService{outputDir: outputDir, keep: keep, logger: log}
	if outputDir == "" {
		dir, err := os.MkdirTemp("", "missingstar-")
		if err != nil {
			return nil, &models.OpError{Op: "services.export", Kind: models.KindRender, Err: fmt.Errorf("create output directory: %w", err)}
		}
		es.outputDir = dir
		es.owned = true
	}
	return es, nil
}

// OutputDir is where the generator writes charts.
func (es *ExportService) OutputDir() string {
	return es.outputDir
}

// Track records chart files written by this process.
func (es *ExportService) Track(paths ...string) {
	es.mu.Lock()
	defer es.mu.Unlock()
	for _, p := range paths {
		es.written.Add(p)
	}
}

// SaveCharts copies both charts of res into dir and returns the written paths.
func (es *ExportService) SaveCharts(ctx context.Context, res *models.Result, dir string) ([]string, error) {
	if res == nil {
		return nil, fmt.Errorf("no charts to save")
	}
	var written []string
	for _, chart := range []models.ChartImage{res.Problem, res.Answer} {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		dst := filepath.Join(dir, filepath.Base(chart.Path))
		if err := copyFile(chart.Path, dst); err != nil {
			return written, err
		}
		written = append(written, dst)
	}
	es.logger.Info("ExportService", "charts saved", map[string]interface{}{
		"dir":   dir,
		"files": len(written),
	})
	return written, nil
}

func (es *ExportService) Shutdown() {
	if es.keep {
		return
	}
	if es.owned {
		if err := os.RemoveAll(es.outputDir); err != nil {
			es.logger.Error("ExportService", err, map[string]interface{}{"operation": "cleanup"})
			return
		}
		es.logger.Debug("ExportService", "output directory removed", map[string]interface{}{
			"dir": es.outputDir,
		})
		return
	}

	es.mu.Lock()
	paths := es.written.Slice()
	es.written = set.Set[string]{}
	es.mu.Unlock()

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			es.logger.Error("ExportService", err, map[string]interface{}{"operation": "cleanup", "file": p})
		}
	}
	es.logger.Debug("ExportService", "chart files removed", map[string]interface{}{
		"dir":   es.outputDir,
		"files": len(paths),
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Close()
}
