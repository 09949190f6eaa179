package main

import (
	"fmt"
	"io"

	"github.com/kingrea/framecast/internal/frames"
)

func runFrames(args []string, stdout io.Writer) error {
	fs := newFlagSet("frames")
	taskSize := fs.Int("task-size", 1, "frames per farm task")
	rounding := fs.String("rounding", "half-up", "midpoint rounding: half-up or half-even")
	check := fs.Bool("check", false, "verify every frame appears exactly once")
	verbose := fs.Bool("v", false, "list tasks in submission order")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: framecast frames [flags] <first-last>")
	}
	r, err := frames.ParseRounding(*rounding)
	if err != nil {
		return err
	}
	input := fs.Arg(0)
	plan, err := frames.NewScheduler(frames.WithRounding(r)).Plan(input, *taskSize)
	if err != nil {
		return err
	}
	if *check {
		if err := frames.CheckCoverage(plan.List, plan.Range); err != nil {
			return err
		}
	}
	if *verbose {
		fmt.Fprintf(stdout, "# %s, %d per task, %s rounding\n", frames.FrameCount(plan.Range), *taskSize, r)
		for i, task := range plan.Ordered() {
			fmt.Fprintf(stdout, "%3d  %s\n", i+1, task.Token())
		}
	}
	fmt.Fprintln(stdout, plan.List)
	return nil
}
