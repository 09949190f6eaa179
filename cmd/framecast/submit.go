package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/framecast/internal/deadline"
	"github.com/kingrea/framecast/internal/logbook"
	"github.com/kingrea/framecast/internal/rendernode"
	"github.com/kingrea/framecast/internal/submission"
	"github.com/kingrea/framecast/internal/tui"
)

func runSubmit(args []string, stdout io.Writer) error {
	fs := newFlagSet("submit")
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	nodeFile := fs.String("node", "", "render node description (path or name under .framecast/nodes)")
	scene := fs.String("scene", "", "scene file to render (defaults to the node's scene)")
	interactive := fs.Bool("i", false, "open the submission form")
	name := fs.String("name", "", "submission name")
	priority := fs.Int("priority", 0, "job priority 0-100")
	frameRange := fs.String("range", "", "frame range first-last")
	taskSize := fs.Int("task-size", 0, "frames per task")
	mode := fs.String("mode", "", "render mode: light, medium or heavy")
	smart := fs.Bool("smart", true, "order tasks so the ends and middle render first")
	currentFrame := fs.Int("frame", 1, "current frame, used when the node renders a single frame")
	version := fs.String("houdini-version", houdiniVersion(), "Houdini version for the plugin info")
	dryRun := fs.Bool("dry-run", false, "print the job and plugin info without submitting")
	keep := fs.Bool("keep", false, "keep a copy of the submitted descriptors under .framecast/jobs")
	var extra keyValueFlag
	fs.Var(&extra, "set", "extra job info entry Key=Value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*nodeFile) == "" {
		return fmt.Errorf("submit requires -node")
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
	sceneFile := strings.TrimSpace(*scene)
	if sceneFile == "" {
		sceneFile = node.Scene()
	}
	if sceneFile == "" {
		return fmt.Errorf("no scene file: pass -scene or record scene in the node description")
	}

	journal, err := logbook.New(p.cfg.JournalPath())
	if err != nil {
		return err
	}
	log := p.logger.With("submit")
	submitterOpts := []deadline.Option{deadline.WithLogger(log)}
	if *keep {
		submitterOpts = append(submitterOpts, deadline.WithKeepDir(p.cfg.JobsDir()))
	}
	farm := deadline.NewSubmitter(deadline.SettingsFromConfig(p.cfg), submitterOpts...)
	svc, err := submission.New(p.cfg, node, sceneFile, farm,
		submission.WithJournal(journal),
		submission.WithLogger(log),
		submission.WithHoudiniVersion(*version),
	)
	if err != nil {
		return err
	}

	req, err := svc.Defaults(*currentFrame)
	if err != nil {
		return err
	}
	set := setFlags(fs)
	if set["name"] {
		req.Name = *name
	}
	if set["priority"] {
		req.Priority = *priority
	}
	if set["range"] {
		req.FrameRange = *frameRange
	}
	if set["task-size"] {
		req.TaskSize = *taskSize
	}
	if set["mode"] {
		m, err := deadline.ParseMode(*mode)
		if err != nil {
			return err
		}
		req.Mode = m
	}
	if set["smart"] {
		req.Smart = *smart
	}
	req.Extra = extra

	if *dryRun {
		return printDryRun(stdout, svc, req)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *interactive {
		return submitInteractive(ctx, stdout, p, svc, req)
	}
	result, err := svc.Submit(ctx, req)
	if err != nil {
		return err
	}
	printResult(stdout, result)
	return nil
}

func submitInteractive(ctx context.Context, stdout io.Writer, p *project, svc *submission.Service, defaults submission.Request) error {
	submit := func(req submission.Request) (submission.Result, error) {
		req.Extra = defaults.Extra
		return svc.Submit(ctx, req)
	}
	form := tui.NewForm(defaults, submit, svc.FrameList)
	if _, err := tea.NewProgram(form).Run(); err != nil {
		return fmt.Errorf("submission form: %w", err)
	}
	if form.Cancelled() {
		fmt.Fprintln(stdout, "Submission cancelled.")
		return nil
	}
	result, done, err := form.Outcome()
	if !done {
		return nil
	}
	if err != nil {
		return err
	}
	printResult(stdout, result)
	req := result.Request
	if err := p.cfg.SetSubmissionDefaults(req.Priority, req.TaskSize, string(req.Mode)); err != nil {
		p.logger.With("submit").Printf("could not remember form values: %v", err)
	}
	return nil
}

func printDryRun(stdout io.Writer, svc *submission.Service, req submission.Request) error {
	job, plugin, err := svc.Prepare(req)
	if err != nil {
		return err
	}
	if err := job.Validate(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "# job_info.txt")
	for _, line := range job.Lines() {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, "# plugin_info.txt")
	for _, line := range plugin.Lines() {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func printResult(stdout io.Writer, result submission.Result) {
	jobID := result.JobID
	if jobID == "" {
		jobID = "(unknown)"
	}
	fmt.Fprintf(stdout, "Submitted %q as job %s\n", result.Job.Name, jobID)
	fmt.Fprintf(stdout, "Frames: %s\n", result.Frames)
}

// resolveNodeFile accepts a path or a bare node name stored under nodesDir.
func resolveNodeFile(value, nodesDir string) string {
	value = strings.TrimSpace(value)
	if _, err := os.Stat(value); err == nil {
		return value
	}
	if filepath.Ext(value) == "" {
		candidate := filepath.Join(nodesDir, value+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return value
}

func houdiniVersion() string {
	major := strings.TrimSpace(os.Getenv("HOUDINI_MAJOR_RELEASE"))
	minor := strings.TrimSpace(os.Getenv("HOUDINI_MINOR_RELEASE"))
	if major == "" {
		return ""
	}
	if minor == "" {
		return major
	}
	return major + "." + minor
}
