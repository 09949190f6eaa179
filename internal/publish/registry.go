// Package publish answers whether a render output has already been published
// to the studio asset-tracking database. Lookups go by project and the
// padded publish code of the output file.
package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/framecast/internal/config"
	"github.com/kingrea/framecast/internal/rendernode"
)

// Registry is the publish lookup the submission tools depend on.
type Registry interface {
	IsPublished(ctx context.Context, projectID, code string) (bool, error)
}

// Recorder is implemented by registries that can record new publishes.
type Recorder interface {
	Record(ctx context.Context, projectID, code string) error
}

// Open picks the Postgres registry when a DSN is configured and the YAML file
// registry otherwise. Lookups are wrapped in an LRU cache when cache_size > 0.
func Open(cfg *config.Config) (Registry, func() error, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("publish: config is required")
	}
	var (
		base    Registry
		closeFn = func() error { return nil }
	)
	if dsn := strings.TrimSpace(cfg.Project.Publish.DSN); dsn != "" {
		pg, err := NewPostgres(dsn)
		if err != nil {
			return nil, nil, err
		}
		base = pg
		closeFn = pg.Close
	} else {
		base = NewFileRegistry(cfg.RegistryFile())
	}
	size := cfg.Project.Publish.CacheSize
	if size <= 0 {
		return base, closeFn, nil
	}
	cached, err := NewCached(base, size)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	return cached, closeFn, nil
}

// Status reports whether node's output is already published in projectID.
func Status(ctx context.Context, reg Registry, node rendernode.Node, projectID string) (bool, string, error) {
	raw, err := rendernode.RawPicturePath(node)
	if err != nil {
		return false, "", err
	}
	code, err := FileName(raw)
	if err != nil {
		return false, "", err
	}
	published, err := reg.IsPublished(ctx, projectID, code)
	if err != nil {
		return false, code, err
	}
	return published, code, nil
}

var errRecordUnsupported = errors.New("publish: registry does not support recording")

// Record marks code as published in projectID when reg supports recording.
func Record(ctx context.Context, reg Registry, projectID, code string) error {
	rec, ok := reg.(Recorder)
	if !ok {
		return errRecordUnsupported
	}
	return rec.Record(ctx, projectID, code)
}
