// internal/config/config.go
//
// This package handles configuration and the .framecast directory structure.
// Every shot or project directory that submits through framecast gets a
// .framecast/ folder holding config, logs and node descriptions.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	// ProjectDirName is the name of the directory we create in each project
	ProjectDirName = ".framecast"

	defaultPlugin      = "Houdini"
	defaultDepartment  = "3D"
	defaultRenderer    = "RenderMan"
	defaultPriority    = 50
	defaultTaskSize    = 1
	defaultMode        = "heavy"
	defaultCacheSize   = 256
	defaultRegistryRel = "published.yaml"
)

const defaultProjectConfigYAML = `# framecast project configuration
version: 1

deadline:
  # Directory containing deadlinecommand. DEADLINE_PATH overrides this.
  path: ""
  # Full command line instead of path, e.g. "ssh farm deadlinecommand".
  # command: ""
  plugin: Houdini
  department: 3D
  renderer_env: RenderMan

submission:
  priority: 50
  task_size: 1
  # light = 3 concurrent tasks, medium = 2, heavy = 1
  mode: heavy
  smart_order: true
  rounding: half-up

publish:
  # Postgres DSN for the publish registry. FRAMECAST_PUBLISH_DSN overrides this.
  dsn: ""
  registry_file: published.yaml
  cache_size: 256

# Custom render metadata written by the render node.
render_metadata: []
`

// reservedMetadataKeys are written by the render node itself.
var reservedMetadataKeys = []string{"renderlightgroups", "postrendergroups"}

// DeadlineConfig controls how jobs reach the farm.
type DeadlineConfig struct {
	Path        string `yaml:"path"`
	Command     string `yaml:"command,omitempty"`
	Plugin      string `yaml:"plugin"`
	Department  string `yaml:"department"`
	Pool        string `yaml:"pool,omitempty"`
	Group       string `yaml:"group,omitempty"`
	RendererEnv string `yaml:"renderer_env"`
}

// SubmissionConfig holds the defaults pre-filled in the submission form.
type SubmissionConfig struct {
	Priority   int    `yaml:"priority"`
	TaskSize   int    `yaml:"task_size"`
	Mode       string `yaml:"mode"`
	SmartOrder *bool  `yaml:"smart_order,omitempty"`
	Rounding   string `yaml:"rounding,omitempty"`
}

// PublishConfig points at the publish registry.
type PublishConfig struct {
	DSN          string `yaml:"dsn,omitempty"`
	RegistryFile string `yaml:"registry_file"`
	CacheSize    int    `yaml:"cache_size"`
	ProjectID    string `yaml:"project_id,omitempty"`
}

// MetadataField declares one custom render metadata entry.
type MetadataField struct {
	Key  string `yaml:"key"`
	Type string `yaml:"type"`
}

// ProjectConfig models .framecast/config.yaml.
type ProjectConfig struct {
	Version        int              `yaml:"version"`
	Deadline       DeadlineConfig   `yaml:"deadline"`
	Submission     SubmissionConfig `yaml:"submission"`
	Publish        PublishConfig    `yaml:"publish"`
	RenderMetadata []MetadataField  `yaml:"render_metadata"`
}

// Config holds the runtime configuration for framecast.
type Config struct {
	// ProjectDir is the directory framecast was started from
	ProjectDir string

	// StateDir is ProjectDir/.framecast
	StateDir string

	Project ProjectConfig
}

// InitProjectDir creates the .framecast directory structure in the given
// project directory.
//
// Structure created:
// .framecast/
// ├── logs/    <- framecast.log and the submission journal
// ├── jobs/    <- kept job descriptors from --keep runs
// ├── nodes/   <- render node descriptions
// └── config.yaml
func InitProjectDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, ProjectDirName)

	dirs := []string{
		filepath.Join(stateDir, "logs"),
		filepath.Join(stateDir, "jobs"),
		filepath.Join(stateDir, "nodes"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(stateDir, "config.yaml"))
}

// NewConfig creates a new Config instance populated with project settings.
// Environment files are loaded first so variables in .framecast/.env can
// override the YAML values.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir: projectDir,
		StateDir:   filepath.Join(projectDir, ProjectDirName),
		Project:    defaultProjectConfig(),
	}
	loadEnvFiles(
		filepath.Join(cfg.StateDir, ".env"),
		filepath.Join(projectDir, ".env"),
	)

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// JobsDir returns the directory where kept job descriptors are written
func (c *Config) JobsDir() string {
	return filepath.Join(c.StateDir, "jobs")
}

// NodesDir returns the directory holding render node descriptions
func (c *Config) NodesDir() string {
	return filepath.Join(c.StateDir, "nodes")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// JournalPath returns the submission journal location.
func (c *Config) JournalPath() string {
	return filepath.Join(c.LogsDir(), "submissions.log")
}

// SmartOrder reports whether submissions reorder frames by default.
func (c *Config) SmartOrder() bool {
	so := c.Project.Submission.SmartOrder
	return so == nil || *so
}

// RegistryFile returns the absolute path of the file-backed publish registry.
func (c *Config) RegistryFile() string {
	return resolvePath(c.StateDir, c.Project.Publish.RegistryFile)
}

// SetSubmissionDefaults updates the remembered form defaults and persists
// them back to .framecast/config.yaml.
func (c *Config) SetSubmissionDefaults(priority, taskSize int, mode string) error {
	c.Project.Submission.Priority = priority
	c.Project.Submission.TaskSize = taskSize
	c.Project.Submission.Mode = mode
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func (c *Config) applyEnv() {
	if path := strings.TrimSpace(os.Getenv("DEADLINE_PATH")); path != "" {
		c.Project.Deadline.Path = expandHome(path)
	}
	if dsn := strings.TrimSpace(os.Getenv("FRAMECAST_PUBLISH_DSN")); dsn != "" {
		c.Project.Publish.DSN = dsn
	}
}

// loadEnvFiles loads each file that exists. godotenv never overrides
// variables that are already set, so the shell environment wins.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Deadline: DeadlineConfig{
			Plugin:      defaultPlugin,
			Department:  defaultDepartment,
			RendererEnv: defaultRenderer,
		},
		Submission: SubmissionConfig{
			Priority: defaultPriority,
			TaskSize: defaultTaskSize,
			Mode:     defaultMode,
		},
		Publish: PublishConfig{
			RegistryFile: defaultRegistryRel,
			CacheSize:    defaultCacheSize,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Deadline.Plugin) == "" {
		pc.Deadline.Plugin = defaultPlugin
	}
	if strings.TrimSpace(pc.Deadline.Department) == "" {
		pc.Deadline.Department = defaultDepartment
	}
	if strings.TrimSpace(pc.Deadline.RendererEnv) == "" {
		pc.Deadline.RendererEnv = defaultRenderer
	}
	if strings.TrimSpace(pc.Submission.Mode) == "" {
		pc.Submission.Mode = defaultMode
	}
	if strings.TrimSpace(pc.Publish.RegistryFile) == "" {
		pc.Publish.RegistryFile = defaultRegistryRel
	}
	if pc.Publish.CacheSize == 0 {
		pc.Publish.CacheSize = defaultCacheSize
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Deadline.Path = expandHome(strings.TrimSpace(pc.Deadline.Path))
	pc.Deadline.Command = strings.TrimSpace(pc.Deadline.Command)
	pc.Deadline.Plugin = strings.TrimSpace(pc.Deadline.Plugin)
	pc.Deadline.Department = strings.TrimSpace(pc.Deadline.Department)
	pc.Submission.Mode = strings.ToLower(strings.TrimSpace(pc.Submission.Mode))
	pc.Submission.Rounding = strings.ToLower(strings.TrimSpace(pc.Submission.Rounding))
	pc.Publish.DSN = strings.TrimSpace(pc.Publish.DSN)
	pc.Publish.ProjectID = strings.TrimSpace(pc.Publish.ProjectID)
	for i := range pc.RenderMetadata {
		pc.RenderMetadata[i].Key = strings.TrimSpace(pc.RenderMetadata[i].Key)
		pc.RenderMetadata[i].Type = strings.ToLower(strings.TrimSpace(pc.RenderMetadata[i].Type))
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if p := pc.Submission.Priority; p < 0 || p > 100 {
		return fmt.Errorf("submission.priority must be between 0 and 100")
	}
	if pc.Submission.TaskSize < 1 {
		return fmt.Errorf("submission.task_size must be >= 1")
	}
	switch pc.Submission.Mode {
	case "light", "medium", "heavy":
	default:
		return fmt.Errorf("submission.mode must be 'light', 'medium' or 'heavy'")
	}
	switch pc.Submission.Rounding {
	case "", "half-up", "half-even":
	default:
		return fmt.Errorf("submission.rounding must be 'half-up' or 'half-even'")
	}
	if pc.Publish.CacheSize < 0 {
		return fmt.Errorf("publish.cache_size must be >= 0")
	}
	for i, field := range pc.RenderMetadata {
		if err := field.validate(); err != nil {
			return fmt.Errorf("render_metadata[%d]: %w", i, err)
		}
	}
	return nil
}

func (f MetadataField) validate() error {
	if f.Key == "" {
		return fmt.Errorf("key is required")
	}
	for _, reserved := range reservedMetadataKeys {
		if strings.EqualFold(f.Key, reserved) {
			return fmt.Errorf("reserved metadata key %q", f.Key)
		}
	}
	switch f.Type {
	case "string", "int", "float":
		return nil
	default:
		return fmt.Errorf("invalid metadata type for key %q: %q", f.Key, f.Type)
	}
}

func expandHome(path string) string {
	if path == "" {
		return ""
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

func resolvePath(base, candidate string) string {
	trimmed := expandHome(strings.TrimSpace(candidate))
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure state dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
