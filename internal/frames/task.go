package frames

import (
	"fmt"
	"strconv"
)

// Task is one farm work unit: a contiguous run of frames.
type Task struct {
	Start int
	End   int
	// Dash forces the "Start-End" form even for a single frame. Leftover
	// tasks always carry it; farm-side parsers have only ever seen that form.
	Dash bool
}

// Len reports how many frames the task covers.
func (t Task) Len() int {
	return t.End - t.Start + 1
}

// Token renders the task for the farm frame list.
func (t Task) Token() string {
	if !t.Dash && t.Start == t.End {
		return strconv.Itoa(t.Start)
	}
	return fmt.Sprintf("%d-%d", t.Start, t.End)
}

// Partition splits r into left-to-right tasks of taskSize frames. A trailing
// remainder becomes one shorter task.
func Partition(r FrameRange, taskSize int) ([]Task, error) {
	if taskSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTaskSize, taskSize)
	}
	if r.First > r.Last {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidRangeFormat, r.First, r.Last)
	}
	total := r.Len()
	full := total / taskSize
	leftover := total - full*taskSize

	tasks := make([]Task, 0, full+1)
	for i := 0; i < full; i++ {
		start := r.First + i*taskSize
		tasks = append(tasks, Task{
			Start: start,
			End:   start + taskSize - 1,
			Dash:  taskSize > 1,
		})
	}
	if leftover >= 1 {
		tasks = append(tasks, Task{
			Start: r.First + full*taskSize,
			End:   r.Last,
			Dash:  true,
		})
	}
	return tasks, nil
}
