// Package submission turns a render node plus the artist's form values into a
// Deadline job. It is the farm half of the render node's "Submit to Farm"
// button: compute the frame list, create output directories, build the
// descriptors, submit and journal the outcome.
package submission

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/framecast/internal/config"
	"github.com/kingrea/framecast/internal/deadline"
	"github.com/kingrea/framecast/internal/frames"
	"github.com/kingrea/framecast/internal/logbook"
	"github.com/kingrea/framecast/internal/rendernode"
)

// ErrSceneMissing is returned when the scene file to render does not exist.
var ErrSceneMissing = errors.New("submission: scene file not found")

// Request holds the values from the submission form.
type Request struct {
	Name       string
	Priority   int
	FrameRange string
	TaskSize   int
	Mode       deadline.Mode
	// Smart reorders tasks so the ends and middle of the range render first.
	Smart bool
	Extra []deadline.KeyValue
}

// Result describes a finished submission.
type Result struct {
	Request Request
	JobID   string
	Frames  string
	Output  string
	Job     deadline.JobInfo
	Plugin  deadline.PluginInfo
}

// Submitter is the farm side of a submission.
type Submitter interface {
	Submit(ctx context.Context, job deadline.JobInfo, plugin deadline.PluginInfo) (deadline.Submission, error)
}

// Logger matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Service submits one render node.
type Service struct {
	cfg       *config.Config
	node      rendernode.Node
	scene     string
	version   string
	submitter Submitter
	scheduler frames.Scheduler
	journal   *logbook.Logbook
	logger    Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithJournal records each attempt in the submission journal.
func WithJournal(j *logbook.Logbook) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHoudiniVersion sets the Version written to the plugin info.
func WithHoudiniVersion(version string) Option {
	return func(s *Service) {
		s.version = strings.TrimSpace(version)
	}
}

// New builds a Service for node rendered from scene.
func New(cfg *config.Config, node rendernode.Node, scene string, submitter Submitter, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("submission: config is required")
	}
	if node == nil {
		return nil, fmt.Errorf("submission: render node is required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("submission: submitter is required")
	}
	rounding, err := frames.ParseRounding(cfg.Project.Submission.Rounding)
	if err != nil {
		return nil, fmt.Errorf("submission: %w", err)
	}
	s := &Service{
		cfg:       cfg,
		node:      node,
		scene:     scene,
		submitter: submitter,
		scheduler: frames.NewScheduler(frames.WithRounding(rounding)),
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Defaults pre-fills a Request the way the submission form opens.
func (s *Service) Defaults(currentFrame int) (Request, error) {
	first, last, err := rendernode.OutputRange(s.node, currentFrame)
	if err != nil {
		return Request{}, err
	}
	mode, err := deadline.ParseMode(s.cfg.Project.Submission.Mode)
	if err != nil {
		mode = deadline.ModeHeavy
	}
	return Request{
		Name:       JobName(s.scene, s.node.Name()),
		Priority:   s.cfg.Project.Submission.Priority,
		FrameRange: fmt.Sprintf("%d-%d", first, last),
		TaskSize:   s.cfg.Project.Submission.TaskSize,
		Mode:       mode,
		Smart:      s.cfg.SmartOrder(),
	}, nil
}

// JobName is "<scene name> (<node name>)", with the scene name cut at its
// first dot.
func JobName(scene, nodeName string) string {
	base := filepath.Base(filepath.ToSlash(scene))
	if idx := strings.Index(base, "."); idx >= 0 {
		base = base[:idx]
	}
	if base == "" || base == "/" {
		base = "untitled"
	}
	return fmt.Sprintf("%s (%s)", base, nodeName)
}

// FrameList is the Frames value for req.
func (s *Service) FrameList(req Request) (string, error) {
	if req.TaskSize < 1 {
		return "", fmt.Errorf("%w: %d", frames.ErrInvalidTaskSize, req.TaskSize)
	}
	if req.Smart {
		return s.scheduler.SmartFrameList(req.FrameRange, req.TaskSize)
	}
	r, err := frames.ParseRange(req.FrameRange)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// Prepare validates req and builds the job and plugin descriptors without
// touching the disk or the farm.
func (s *Service) Prepare(req Request) (deadline.JobInfo, deadline.PluginInfo, error) {
	if strings.TrimSpace(req.Name) == "" {
		return deadline.JobInfo{}, deadline.PluginInfo{}, fmt.Errorf("submission: name is required")
	}
	if req.Priority < 0 || req.Priority > 100 {
		return deadline.JobInfo{}, deadline.PluginInfo{}, fmt.Errorf("submission: priority %d out of range 0-100", req.Priority)
	}
	list, err := s.FrameList(req)
	if err != nil {
		return deadline.JobInfo{}, deadline.PluginInfo{}, err
	}
	picture, err := rendernode.PicturePath(s.node)
	if err != nil {
		return deadline.JobInfo{}, deadline.PluginInfo{}, err
	}
	driver, err := rendernode.OutputDriver(s.node)
	if err != nil {
		return deadline.JobInfo{}, deadline.PluginInfo{}, err
	}
	mode := req.Mode
	if mode == "" {
		mode = deadline.ModeHeavy
	}
	dl := s.cfg.Project.Deadline
	// ChunkSize stays unset. Deadline chunks the Frames list in list order,
	// and a short leftover task in the middle would shift every chunk after
	// it. With one frame per farm task the list order is the render order.
	job := deadline.JobInfo{
		Plugin:          dl.Plugin,
		Name:            req.Name,
		Frames:          list,
		Priority:        req.Priority,
		ConcurrentTasks: mode.ConcurrentTasks(),
		Department:      dl.Department,
		Pool:            dl.Pool,
		Group:           dl.Group,
		OutputDirectory: filepath.Dir(picture),
		OutputFilename:  filepath.Base(picture),
		Environment:     []deadline.KeyValue{{Key: "RENDER_ENGINE", Value: dl.RendererEnv}},
		Extra:           req.Extra,
	}
	plugin := deadline.PluginInfo{
		OutputDriver: driver,
		Version:      s.version,
		SceneFile:    filepath.ToSlash(s.scene),
	}
	return job, plugin, nil
}

// Submit prepares, creates output directories and submits req.
func (s *Service) Submit(ctx context.Context, req Request) (Result, error) {
	job, plugin, err := s.Prepare(req)
	if err != nil {
		s.journalError(req.Name, err)
		return Result{}, err
	}
	if _, err := os.Stat(s.scene); err != nil {
		err = fmt.Errorf("%w: %s", ErrSceneMissing, s.scene)
		s.journalError(req.Name, err)
		return Result{}, err
	}
	dirs, err := rendernode.OutputDirs(s.node)
	if err != nil {
		s.journalError(req.Name, err)
		return Result{}, err
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			err = fmt.Errorf("submission: create output dir: %w", err)
			s.journalError(req.Name, err)
			return Result{}, err
		}
		s.logger.Printf("submission: ensured output directory %s", dir)
	}

	sub, err := s.submitter.Submit(ctx, job, plugin)
	result := Result{Request: req, JobID: sub.JobID, Frames: job.Frames, Output: sub.Output, Job: job, Plugin: plugin}
	if err != nil {
		s.journalError(req.Name, err)
		return result, err
	}
	s.journal.Info("submitted %q job=%s priority=%d concurrent=%d task_size=%d frames=%s",
		req.Name, valueOr(sub.JobID, "?"), req.Priority, job.ConcurrentTasks, req.TaskSize, job.Frames)
	return result, nil
}

func (s *Service) journalError(name string, err error) {
	s.logger.Printf("submission: %q failed: %v", name, err)
	s.journal.Error("submission %q failed: %v", name, err)
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
