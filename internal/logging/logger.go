// Package logging writes the framecast run log. Every project command shares
// one file, .framecast/logs/framecast.log; each line carries the command
// scope that wrote it, so a submission can be followed from form to farm.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kingrea/framecast/internal/config"
)

const fileName = "framecast.log"

// Logger appends timestamped, scoped lines to the project log.
type Logger struct {
	out   *output
	scope string
}

// output is shared by a Logger and every scoped copy of it.
type output struct {
	mu    sync.Mutex
	file  *os.File
	clock func() time.Time
}

// New opens the log file for the given project directory.
func New(projectDir string) (*Logger, error) {
	logDir := filepath.Join(projectDir, config.ProjectDirName, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(logDir, fileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{out: &output{file: f, clock: time.Now}}, nil
}

// With returns a logger writing to the same file under scope. Scopes nest:
// With("submit").With("deadline") writes "submit/deadline".
func (l *Logger) With(scope string) *Logger {
	if l == nil {
		return nil
	}
	scope = strings.TrimSpace(scope)
	if l.scope != "" && scope != "" {
		scope = l.scope + "/" + scope
	} else if scope == "" {
		scope = l.scope
	}
	return &Logger{out: l.out, scope: scope}
}

// Scope reports the logger's scope, "" for the root logger.
func (l *Logger) Scope() string {
	if l == nil {
		return ""
	}
	return l.scope
}

// Path returns the backing file name, or "" for a nil logger.
func (l *Logger) Path() string {
	if l == nil || l.out == nil || l.out.file == nil {
		return ""
	}
	return l.out.file.Name()
}

// Close releases the file handle. Scoped copies share it, so only the
// logger returned by New should be closed.
func (l *Logger) Close() error {
	if l == nil || l.out == nil || l.out.file == nil {
		return nil
	}
	return l.out.file.Close()
}

// Printf writes a single timestamped line to the log file.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.out == nil || l.out.file == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if l.scope != "" {
		line = "[" + l.scope + "] " + line
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	fmt.Fprintf(l.out.file, "[%s] %s\n", l.out.clock().Format(time.RFC3339), line)
}
