package frames

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxFrames caps how many frames one range may hold. Anything larger is a
// typo, and planning it would allocate a task per frame.
const MaxFrames = 1_000_000

// FrameRange is an inclusive span of frames.
type FrameRange struct {
	First int
	Last  int
}

// ParseRange accepts "N" or "F-L". Only ASCII digits are allowed around the
// single dash, so signs and whitespace are rejected. Ranges longer than
// MaxFrames are rejected too.
func ParseRange(value string) (FrameRange, error) {
	parts := strings.Split(value, "-")
	switch len(parts) {
	case 1:
		n, err := parseFrame(parts[0])
		if err != nil {
			return FrameRange{}, fmt.Errorf("%w: %q", ErrInvalidRangeFormat, value)
		}
		return FrameRange{First: n, Last: n}, nil
	case 2:
		first, err := parseFrame(parts[0])
		if err != nil {
			return FrameRange{}, fmt.Errorf("%w: %q", ErrInvalidRangeFormat, value)
		}
		last, err := parseFrame(parts[1])
		if err != nil {
			return FrameRange{}, fmt.Errorf("%w: %q", ErrInvalidRangeFormat, value)
		}
		if first > last {
			return FrameRange{}, fmt.Errorf("%w: %q: first frame after last", ErrInvalidRangeFormat, value)
		}
		// Both ends are non-negative, so last-first cannot overflow.
		if last-first >= MaxFrames {
			return FrameRange{}, fmt.Errorf("%w: %q: more than %d frames", ErrInvalidRangeFormat, value, MaxFrames)
		}
		return FrameRange{First: first, Last: last}, nil
	default:
		return FrameRange{}, fmt.Errorf("%w: %q", ErrInvalidRangeFormat, value)
	}
}

func parseFrame(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty frame")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}
	return strconv.Atoi(s)
}

// Len reports how many frames the range covers.
func (r FrameRange) Len() int {
	return r.Last - r.First + 1
}

// String renders the range in the "F-L" form, or "N" when it holds one frame.
func (r FrameRange) String() string {
	if r.First == r.Last {
		return strconv.Itoa(r.First)
	}
	return fmt.Sprintf("%d-%d", r.First, r.Last)
}
