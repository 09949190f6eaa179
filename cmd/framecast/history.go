package main

import (
	"fmt"
	"io"

	"github.com/kingrea/framecast/internal/logbook"
)

func runHistory(args []string, stdout io.Writer) error {
	fs := newFlagSet("history")
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	n := fs.Int("n", 20, "number of entries to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := openProject(*projectDir)
	if err != nil {
		return err
	}
	defer p.Close()

	journal, err := logbook.New(p.cfg.JournalPath())
	if err != nil {
		return err
	}
	lines, total := journal.Tail(*n)
	if total == 0 {
		fmt.Fprintln(stdout, "No submissions yet.")
		return nil
	}
	for _, line := range lines {
		fmt.Fprintln(stdout, line)
	}
	if total > len(lines) {
		fmt.Fprintf(stdout, "(%d of %d entries)\n", len(lines), total)
	}
	return nil
}
