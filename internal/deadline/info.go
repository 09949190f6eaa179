package deadline

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode is the artist-facing load setting. Heavier renders get fewer tasks
// per worker.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeMedium Mode = "medium"
	ModeHeavy  Mode = "heavy"
)

// Modes lists every mode in selector order.
var Modes = []Mode{ModeLight, ModeMedium, ModeHeavy}

// ParseMode normalizes a mode name.
func ParseMode(value string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(value)))
	switch m {
	case ModeLight, ModeMedium, ModeHeavy:
		return m, nil
	default:
		return "", fmt.Errorf("deadline: unknown mode %q", value)
	}
}

// ConcurrentTasks is how many tasks of the job one worker runs at once.
func (m Mode) ConcurrentTasks() int {
	switch m {
	case ModeLight:
		return 3
	case ModeMedium:
		return 2
	default:
		return 1
	}
}

// KeyValue is one extra descriptor line.
type KeyValue struct {
	Key   string
	Value string
}

// JobInfo holds the job_info.txt properties.
type JobInfo struct {
	Plugin          string
	Name            string
	Frames          string
	ChunkSize       int
	Priority        int
	ConcurrentTasks int
	Department      string
	Pool            string
	Group           string
	OutputDirectory string
	OutputFilename  string
	// Environment is written as EnvironmentKeyValueN entries in order.
	Environment []KeyValue
	Extra       []KeyValue
}

// PluginInfo holds the plugin_info.txt properties for the Houdini plugin.
type PluginInfo struct {
	OutputDriver string
	Version      string
	SceneFile    string
	Extra        []KeyValue
}

// Validate checks the fields Deadline rejects a job without.
func (j JobInfo) Validate() error {
	switch {
	case strings.TrimSpace(j.Plugin) == "":
		return fmt.Errorf("deadline: job plugin is required")
	case strings.TrimSpace(j.Name) == "":
		return fmt.Errorf("deadline: job name is required")
	case strings.TrimSpace(j.Frames) == "":
		return fmt.Errorf("deadline: job frames are required")
	case j.Priority < 0 || j.Priority > 100:
		return fmt.Errorf("deadline: priority %d out of range 0-100", j.Priority)
	}
	return nil
}

// Lines renders the job info in file order.
func (j JobInfo) Lines() []string {
	lines := []string{
		"Plugin=" + j.Plugin,
		"Frames=" + j.Frames,
	}
	if j.ChunkSize > 0 {
		lines = append(lines, "ChunkSize="+strconv.Itoa(j.ChunkSize))
	}
	lines = append(lines, "Priority="+strconv.Itoa(j.Priority))
	if j.ConcurrentTasks > 0 {
		lines = append(lines, "ConcurrentTasks="+strconv.Itoa(j.ConcurrentTasks))
	}
	lines = append(lines, "Name="+j.Name)
	lines = appendIfSet(lines, "Department", j.Department)
	lines = appendIfSet(lines, "Pool", j.Pool)
	lines = appendIfSet(lines, "Group", j.Group)
	lines = appendIfSet(lines, "OutputDirectory0", j.OutputDirectory)
	lines = appendIfSet(lines, "OutputFilename0", j.OutputFilename)
	for i, kv := range j.Environment {
		lines = append(lines, fmt.Sprintf("EnvironmentKeyValue%d=%s=%s", i, kv.Key, kv.Value))
	}
	return appendExtra(lines, j.Extra)
}

// Lines renders the plugin info in file order.
func (p PluginInfo) Lines() []string {
	lines := []string{
		"OutputDriver=" + p.OutputDriver,
		"Version=" + p.Version,
		"SceneFile=" + p.SceneFile,
	}
	return appendExtra(lines, p.Extra)
}

func appendIfSet(lines []string, key, value string) []string {
	if strings.TrimSpace(value) == "" {
		return lines
	}
	return append(lines, key+"="+value)
}

func appendExtra(lines []string, extra []KeyValue) []string {
	for _, kv := range extra {
		if strings.TrimSpace(kv.Key) == "" {
			continue
		}
		lines = append(lines, kv.Key+"="+kv.Value)
	}
	return lines
}

func render(lines []string) []byte {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
