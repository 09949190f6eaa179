package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kingrea/framecast/internal/publish"
	"github.com/kingrea/framecast/internal/rendernode"
)

func runPublished(args []string, stdout io.Writer) error {
	fs := newFlagSet("published")
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	nodeFile := fs.String("node", "", "render node description (path or name under .framecast/nodes)")
	projectID := fs.String("id", "", "publish project id (defaults to publish.project_id)")
	record := fs.Bool("record", false, "record the output as published")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*nodeFile) == "" {
		return fmt.Errorf("published requires -node")
	}

	p, err := openProject(*projectDir)
	if err != nil {
		return err
	}
	defer p.Close()

	node, err := rendernode.Load(resolveNodeFile(*nodeFile, p.cfg.NodesDir()))
	if err != nil {
		return err
	}
	id := strings.TrimSpace(*projectID)
	if id == "" {
		id = p.cfg.Project.Publish.ProjectID
	}
	if id == "" {
		return fmt.Errorf("no publish project id: pass -id or set publish.project_id")
	}

	log := p.logger.With("published")
	reg, closeRegistry, err := publish.Open(p.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRegistry(); err != nil {
			log.Printf("close registry: %v", err)
		}
	}()

	ctx := context.Background()
	published, code, err := publish.Status(ctx, reg, node, id)
	if err != nil {
		return err
	}
	if *record {
		if published {
			fmt.Fprintf(stdout, "%s already published in project %s\n", code, id)
			return nil
		}
		if err := publish.Record(ctx, reg, id, code); err != nil {
			return err
		}
		log.Printf("recorded %s in project %s", code, id)
		fmt.Fprintf(stdout, "%s recorded in project %s\n", code, id)
		return nil
	}
	if published {
		fmt.Fprintf(stdout, "%s: published\n", code)
	} else {
		fmt.Fprintf(stdout, "%s: not published\n", code)
	}
	return nil
}
