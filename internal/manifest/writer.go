package manifest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sigreer/osdgen/internal/planner"
)

// FileSuffix names per-host manifests: <uuid>_devices.yaml
const FileSuffix = "_devices.yaml"

const tmpPattern = ".osdgen-*.tmp"

// Writer places rendered manifests in a result directory
type Writer struct {
	Dir    string
	Logger *slog.Logger
}

// NewWriter creates a writer for dir
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Writer{Dir: dir, Logger: logger}
}

// PathFor returns the manifest path of a host
func (w *Writer) PathFor(hostUUID string) string {
	return filepath.Join(w.Dir, hostUUID+FileSuffix)
}

// RemoveStale deletes manifests and temp files left by earlier runs
func (w *Writer) RemoveStale() ([]string, error) {
	entries, err := os.ReadDir(w.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result directory: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		stale := strings.HasSuffix(name, FileSuffix)
		if ok, _ := filepath.Match(tmpPattern, name); ok {
			stale = true
		}
		if !stale {
			continue
		}
		w.Logger.Info("removing stale file", "file", name)
		if err := os.Remove(filepath.Join(w.Dir, name)); err != nil {
			return removed, fmt.Errorf("failed to remove stale file %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// Write renders and stores a host's manifest. Hosts without selected
// devices produce no file and an empty path.
func (w *Writer) Write(plan *planner.HostPlan) (string, error) {
	if !plan.HasOutput() {
		w.Logger.Info("no output produced", "host", plan.HostUUID)
		return "", nil
	}

	data, err := Render(plan)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create result directory: %w", err)
	}

	tmp, err := os.CreateTemp(w.Dir, tmpPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return "", err
	}

	path := w.PathFor(plan.HostUUID)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move manifest into place: %w", err)
	}

	w.Logger.Debug("wrote manifest", "host", plan.HostUUID, "path", path, "osds", len(plan.Assignments))
	return path, nil
}
