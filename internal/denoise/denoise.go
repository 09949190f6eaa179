// Package denoise runs after each farm task of a denoised render. The denoiser
// writes its result under the beauty file name; this moves each frame of the
// task to the denoise name so the beauty pass is not overwritten on the next
// render.
package denoise

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrMissingFrame is returned when a frame of the task has no beauty file to
// rename.
var ErrMissingFrame = errors.New("denoise: frame missing")

// Logger matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Output is one job output: a directory and a file name pattern carrying a
// %0Nd frame placeholder.
type Output struct {
	Dir      string
	Filename string
}

// Report lists what happened to each frame.
type Report struct {
	Renamed []int
	// Existing lists frames whose denoise file was already in place.
	Existing []int
}

var padding = regexp.MustCompile(`%0(\d)d`)

// FrameFile substitutes frame into a %0Nd pattern.
func FrameFile(pattern string, frame int) string {
	return padding.ReplaceAllStringFunc(pattern, func(token string) string {
		width := padding.FindStringSubmatch(token)[1]
		return fmt.Sprintf("%0"+width+"d", frame)
	})
}

// Rename processes frames start..end of every output whose directory ends in
// "denoise". Other outputs are left alone.
func Rename(outputs []Output, start, end int, logger Logger) (Report, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	if start > end {
		return Report{}, fmt.Errorf("denoise: start frame %d after end frame %d", start, end)
	}
	var report Report
	for _, out := range outputs {
		dir := strings.TrimRight(filepath.ToSlash(out.Dir), "/")
		if !strings.HasSuffix(dir, "denoise") {
			continue
		}
		for frame := start; frame <= end; frame++ {
			filename := FrameFile(out.Filename, frame)
			from := filepath.Join(out.Dir, strings.ReplaceAll(filename, "_denoise_", "_beauty_"))
			to := filepath.Join(out.Dir, filename)

			if _, err := os.Stat(from); err != nil {
				return report, fmt.Errorf("%w: can't find frame %d to denoise: %s", ErrMissingFrame, frame, from)
			}
			if _, err := os.Stat(to); err == nil {
				logger.Printf("denoise: renamed denoise frame %d already found: %s", frame, to)
				report.Existing = append(report.Existing, frame)
				continue
			}
			if err := os.Rename(from, to); err != nil {
				return report, fmt.Errorf("denoise: rename frame %d: %w", frame, err)
			}
			logger.Printf("denoise: renamed denoised frame %d", frame)
			report.Renamed = append(report.Renamed, frame)
		}
	}
	return report, nil
}
