package frames

import (
	"fmt"
	"strconv"
	"strings"
)

// Scheduler computes smart frame lists. The zero value rounds half-up.
type Scheduler struct {
	rounding Rounding
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithRounding overrides the midpoint rounding rule.
func WithRounding(r Rounding) Option {
	return func(s *Scheduler) {
		s.rounding = r
	}
}

// NewScheduler builds a Scheduler with the given options applied.
func NewScheduler(opts ...Option) Scheduler {
	s := Scheduler{rounding: RoundHalfUp}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// Rounding reports the configured midpoint rule.
func (s Scheduler) Rounding() Rounding {
	return s.rounding
}

// Plan is the structured form of a smart frame list.
type Plan struct {
	Range    FrameRange
	TaskSize int
	// Tasks are in left-to-right frame order.
	Tasks []Task
	// Order holds indices into Tasks in submission order.
	Order []int
	// Passthrough is set for inputs that are never reordered; List then
	// holds the literal farm string.
	Passthrough bool
	List        string
}

// Ordered returns the tasks in submission order.
func (p Plan) Ordered() []Task {
	out := make([]Task, 0, len(p.Order))
	for _, idx := range p.Order {
		out = append(out, p.Tasks[idx])
	}
	return out
}

// Plan validates the input and computes the visiting order.
func (s Scheduler) Plan(rangeSpec string, taskSize int) (Plan, error) {
	if taskSize < 1 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidTaskSize, taskSize)
	}
	r, err := ParseRange(rangeSpec)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{Range: r, TaskSize: taskSize}

	if !strings.Contains(rangeSpec, "-") {
		plan.Passthrough = true
		plan.List = rangeSpec
		return plan, nil
	}
	if r.Len() == 2 {
		plan.Passthrough = true
		plan.List = fmt.Sprintf("%d,%d", r.First, r.Last)
		return plan, nil
	}

	tasks, err := Partition(r, taskSize)
	if err != nil {
		return Plan{}, err
	}
	plan.Tasks = tasks
	plan.Order = BisectOrder(len(tasks), s.rounding)

	tokens := make([]string, 0, len(plan.Order))
	for _, idx := range plan.Order {
		tokens = append(tokens, tasks[idx].Token())
	}
	plan.List = strings.Join(tokens, ",")
	return plan, nil
}

// SmartFrameList returns the comma-separated farm frame list for rangeSpec
// split into tasks of taskSize frames.
func (s Scheduler) SmartFrameList(rangeSpec string, taskSize int) (string, error) {
	plan, err := s.Plan(rangeSpec, taskSize)
	if err != nil {
		return "", err
	}
	return plan.List, nil
}

// ComputeSmartFrameList is SmartFrameList with the default half-up rounding.
// The task size is checked before anything else, so even a single frame such
// as "1001" is rejected with ErrInvalidTaskSize when taskSize < 1; with a
// valid task size it is returned unchanged.
//
//	ComputeSmartFrameList("1001-1005", 1) // "1001,1005,1003,1002,1004"
func ComputeSmartFrameList(rangeSpec string, taskSize int) (string, error) {
	return NewScheduler().SmartFrameList(rangeSpec, taskSize)
}

// ExpandTokens lists every frame named by a farm frame list, in token order.
// Duplicates are kept so callers can detect them.
func ExpandTokens(list string) ([]int, error) {
	if list == "" {
		return nil, nil
	}
	var out []int
	for _, token := range strings.Split(list, ",") {
		r, err := ParseRange(token)
		if err != nil {
			return nil, err
		}
		for f := r.First; f <= r.Last; f++ {
			out = append(out, f)
		}
	}
	return out, nil
}

// CheckCoverage verifies that list names every frame of r exactly once.
func CheckCoverage(list string, r FrameRange) error {
	got, err := ExpandTokens(list)
	if err != nil {
		return err
	}
	seen := make(map[int]struct{}, len(got))
	for _, f := range got {
		if f < r.First || f > r.Last {
			return fmt.Errorf("frames: frame %d outside %s", f, r)
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("frames: frame %d listed twice", f)
		}
		seen[f] = struct{}{}
	}
	if len(seen) != r.Len() {
		return fmt.Errorf("frames: %d of %d frames covered", len(seen), r.Len())
	}
	return nil
}

// FrameCount is a convenience for log lines: "1001-1010" -> "10 frames".
func FrameCount(r FrameRange) string {
	if r.Len() == 1 {
		return "1 frame"
	}
	return strconv.Itoa(r.Len()) + " frames"
}
