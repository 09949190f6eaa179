package frames

import "errors"

var (
	// ErrInvalidRangeFormat is returned when a range is not "N" or "F-L"
	// with F <= L.
	ErrInvalidRangeFormat = errors.New("frames: invalid range format")
	// ErrInvalidTaskSize is returned when the task size is below one.
	ErrInvalidTaskSize = errors.New("frames: invalid task size")
)
