package deadline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kingrea/framecast/internal/config"
	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
)

// ErrCommandNotFound is returned when no deadlinecommand can be located.
var ErrCommandNotFound = errors.New("deadline: deadlinecommand not found")

const commandName = "deadlinecommand"

// Logger matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args and returns combined output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", filepath.Base(name), err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// Settings locate deadlinecommand.
type Settings struct {
	// Dir is the directory holding deadlinecommand.
	Dir string
	// Command, when set, is a full command line used instead of Dir.
	Command string
}

// SettingsFromConfig reads the deadline section of the project config.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	return Settings{
		Dir:     cfg.Project.Deadline.Path,
		Command: cfg.Project.Deadline.Command,
	}
}

// Argv resolves the command line that submissions are run with.
func (s Settings) Argv() ([]string, error) {
	if cmdline := strings.TrimSpace(s.Command); cmdline != "" {
		args, err := shellwords.Parse(cmdline)
		if err != nil {
			return nil, fmt.Errorf("deadline: parse command %q: %w", cmdline, err)
		}
		if len(args) == 0 {
			return nil, ErrCommandNotFound
		}
		return args, nil
	}
	if dir := strings.TrimSpace(s.Dir); dir != "" {
		expanded, err := homedir.Expand(dir)
		if err != nil {
			return nil, fmt.Errorf("deadline: expand %q: %w", dir, err)
		}
		return []string{filepath.Join(expanded, commandName)}, nil
	}
	if found, err := exec.LookPath(commandName); err == nil {
		return []string{found}, nil
	}
	return nil, ErrCommandNotFound
}

// Submission is the outcome of one deadlinecommand call.
type Submission struct {
	JobID  string
	Output string
	// Descriptors holds the kept job/plugin file paths when KeepDir is set.
	Descriptors []string
}

// Submitter writes descriptor files and runs deadlinecommand.
type Submitter struct {
	settings Settings
	runner   Runner
	logger   Logger
	tempRoot string
	keepDir  string
}

// Option customizes a Submitter.
type Option func(*Submitter)

// WithRunner overrides how deadlinecommand is executed.
func WithRunner(r Runner) Option {
	return func(s *Submitter) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Submitter) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTempRoot sets where the per-submission temporary directory is created.
func WithTempRoot(dir string) Option {
	return func(s *Submitter) {
		s.tempRoot = dir
	}
}

// WithKeepDir copies each submitted descriptor pair into dir.
func WithKeepDir(dir string) Option {
	return func(s *Submitter) {
		s.keepDir = dir
	}
}

// NewSubmitter prepares a Submitter.
func NewSubmitter(settings Settings, opts ...Option) *Submitter {
	s := &Submitter{
		settings: settings,
		runner:   ExecRunner{},
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Submit writes job_info.txt and plugin_info.txt into a fresh temporary
// directory, runs deadlinecommand on them and removes the directory.
func (s *Submitter) Submit(ctx context.Context, job JobInfo, plugin PluginInfo) (Submission, error) {
	if err := job.Validate(); err != nil {
		return Submission{}, err
	}
	argv, err := s.settings.Argv()
	if err != nil {
		return Submission{}, err
	}

	tmp, err := os.MkdirTemp(s.tempRoot, "framecast-job-")
	if err != nil {
		return Submission{}, fmt.Errorf("deadline: create temp dir: %w", err)
	}
	s.logger.Printf("deadline: created temporary directory %s", tmp)
	defer func() {
		_ = os.RemoveAll(tmp)
		s.logger.Printf("deadline: removed temporary directory %s", tmp)
	}()

	jobPath := filepath.ToSlash(filepath.Join(tmp, "job_info.txt"))
	pluginPath := filepath.ToSlash(filepath.Join(tmp, "plugin_info.txt"))
	if err := os.WriteFile(jobPath, render(job.Lines()), 0o644); err != nil {
		return Submission{}, fmt.Errorf("deadline: write job info: %w", err)
	}
	if err := os.WriteFile(pluginPath, render(plugin.Lines()), 0o644); err != nil {
		return Submission{}, fmt.Errorf("deadline: write plugin info: %w", err)
	}

	result := Submission{}
	if s.keepDir != "" {
		kept, err := s.keep(tmp, job.Name)
		if err != nil {
			s.logger.Printf("deadline: keep descriptors: %v", err)
		}
		result.Descriptors = kept
	}

	args := append(append([]string{}, argv[1:]...), jobPath, pluginPath)
	out, err := s.runner.Run(ctx, argv[0], args...)
	result.Output = string(out)
	if err != nil {
		s.logger.Printf("deadline: submission of %q failed: %v", job.Name, err)
		return result, fmt.Errorf("deadline: submit %q: %w", job.Name, err)
	}
	result.JobID = ParseJobID(result.Output)
	s.logger.Printf("deadline: submitted %q as job %s", job.Name, result.JobID)
	return result, nil
}

func (s *Submitter) keep(tmp, jobName string) ([]string, error) {
	dir := filepath.Join(s.keepDir, sanitize(jobName))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var kept []string
	for _, name := range []string{"job_info.txt", "plugin_info.txt"} {
		data, err := os.ReadFile(filepath.Join(tmp, name))
		if err != nil {
			return kept, err
		}
		dst := filepath.Join(dir, name)
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return kept, err
		}
		kept = append(kept, dst)
	}
	return kept, nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitize(name string) string {
	cleaned := strings.Trim(unsafeChars.ReplaceAllString(name, "_"), "_")
	if cleaned == "" {
		return "job"
	}
	return cleaned
}

var jobIDPattern = regexp.MustCompile(`(?m)^JobID=(\S+)`)

// ParseJobID extracts the JobID line printed by deadlinecommand.
func ParseJobID(output string) string {
	m := jobIDPattern.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
