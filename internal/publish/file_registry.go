package publish

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Entry is one published file.
type Entry struct {
	ProjectID string `yaml:"project_id"`
	Code      string `yaml:"code"`
}

type registryFile struct {
	Published []Entry `yaml:"published"`
}

// FileRegistry keeps publishes in a YAML file. It suits single-artist setups
// and tests; studios point framecast at Postgres instead.
type FileRegistry struct {
	path string
	mu   sync.Mutex
}

// NewFileRegistry returns a registry backed by path. The file is created on
// the first Record.
func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{path: path}
}

// IsPublished reports whether code is recorded for projectID.
func (r *FileRegistry) IsPublished(ctx context.Context, projectID, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return false, err
	}
	for _, e := range data.Published {
		if e.ProjectID == strings.TrimSpace(projectID) && e.Code == strings.TrimSpace(code) {
			return true, nil
		}
	}
	return false, nil
}

// Record adds a publish. Recording the same code twice is a no-op.
func (r *FileRegistry) Record(ctx context.Context, projectID, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := Entry{ProjectID: strings.TrimSpace(projectID), Code: strings.TrimSpace(code)}
	if entry.Code == "" {
		return fmt.Errorf("publish: code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := r.load()
	if err != nil {
		return err
	}
	for _, e := range data.Published {
		if e == entry {
			return nil
		}
	}
	data.Published = append(data.Published, entry)
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("publish: encode registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("publish: ensure registry dir: %w", err)
	}
	if err := os.WriteFile(r.path, out, 0o644); err != nil {
		return fmt.Errorf("publish: write registry: %w", err)
	}
	return nil
}

func (r *FileRegistry) load() (registryFile, error) {
	var data registryFile
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return data, nil
		}
		return data, fmt.Errorf("publish: read %s: %w", r.path, err)
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("publish: parse %s: %w", r.path, err)
	}
	return data, nil
}
