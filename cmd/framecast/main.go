// cmd/framecast/main.go
//
// This is the entry point for the framecast CLI.
//
// Subcommands:
//   frames     print the smart frame list for a range
//   init       create the .framecast directory in the current project
//   submit     submit a render node to Deadline (-i opens the form)
//   published  check whether a node's output is already published
//   denoise    farm post-task: move denoised frames to their final name
//   history    show recent submissions

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/framecast/internal/config"
	"github.com/kingrea/framecast/internal/logging"
)

const usage = `Usage: framecast <command> [flags]

Commands:
  frames     print the smart frame list for a range
  init       create the .framecast directory
  submit     submit a render node to Deadline
  published  check whether a render node's output is published
  denoise    rename denoised frames after a farm task
  history    show recent submissions

Run "framecast <command> -h" for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		die("Error: %v", err)
	}
}

func run(command string, args []string, stdout io.Writer) error {
	switch command {
	case "frames":
		return runFrames(args, stdout)
	case "init":
		return runInit(args, stdout)
	case "submit":
		return runSubmit(args, stdout)
	case "published":
		return runPublished(args, stdout)
	case "denoise":
		return runDenoise(args, stdout)
	case "history":
		return runHistory(args, stdout)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}
}

func runInit(args []string, stdout io.Writer) error {
	fs := newFlagSet("init")
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dir, err := resolveProject(*projectDir)
	if err != nil {
		return err
	}
	if err := config.InitProjectDir(dir); err != nil {
		return fmt.Errorf("init %s: %w", config.ProjectDirName, err)
	}
	fmt.Fprintf(stdout, "Initialized %s\n", filepath.Join(dir, config.ProjectDirName))
	return nil
}

// project bundles what every project-scoped command needs.
type project struct {
	cfg    *config.Config
	logger *logging.Logger
}

func (p *project) Close() {
	_ = p.logger.Close()
}

func openProject(projectDir string) (*project, error) {
	dir, err := resolveProject(projectDir)
	if err != nil {
		return nil, err
	}
	if err := config.InitProjectDir(dir); err != nil {
		return nil, fmt.Errorf("init %s: %w", config.ProjectDirName, err)
	}
	cfg, err := config.NewConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(dir)
	if err != nil {
		return nil, err
	}
	return &project{cfg: cfg, logger: logger}, nil
}

func resolveProject(projectDir string) (string, error) {
	dir := strings.TrimSpace(projectDir)
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determine working directory: %w", err)
		}
	}
	return filepath.Abs(dir)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
