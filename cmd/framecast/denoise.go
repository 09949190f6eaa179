package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/kingrea/framecast/internal/denoise"
)

// runDenoise is the farm post-task script. Workers usually have no project
// directory, so it logs to stderr unless -project points at one.
func runDenoise(args []string, stdout io.Writer) error {
	fs := newFlagSet("denoise")
	projectDir := fs.String("project", "", "project directory to log into (defaults to stderr)")
	dir := fs.String("dir", "", "job output directory")
	file := fs.String("file", "", "job output file name pattern with %0Nd")
	start := fs.Int("start", 0, "first frame of the task")
	end := fs.Int("end", 0, "last frame of the task")
	var outputs keyValueFlag
	fs.Var(&outputs, "output", "additional output DIR=PATTERN (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var targets []denoise.Output
	if *dir != "" || *file != "" {
		if *dir == "" || *file == "" {
			return fmt.Errorf("denoise: -dir and -file go together")
		}
		targets = append(targets, denoise.Output{Dir: *dir, Filename: *file})
	}
	for _, kv := range outputs {
		targets = append(targets, denoise.Output{Dir: kv.Key, Filename: kv.Value})
	}
	if len(targets) == 0 {
		return fmt.Errorf("denoise: no outputs given")
	}

	var logger denoise.Logger = log.New(os.Stderr, "", log.LstdFlags)
	if strings.TrimSpace(*projectDir) != "" {
		p, err := openProject(*projectDir)
		if err != nil {
			return err
		}
		defer p.Close()
		logger = p.logger.With("denoise")
	}
	report, err := denoise.Rename(targets, *start, *end, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Renamed %d frame(s), %d already in place\n", len(report.Renamed), len(report.Existing))
	return nil
}
