package frames

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
)

func TestComputeSmartFrameListExamples(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		taskSize int
		want     string
	}{
		{name: "documented", input: "1001-1005", taskSize: 1, want: "1001,1005,1003,1002,1004"},
		{name: "chunked", input: "1001-1010", taskSize: 3, want: "1001-1003,1010-1010,1007-1009,1004-1006"},
		{name: "single frame", input: "1001", taskSize: 1, want: "1001"},
		{name: "single frame large task", input: "1001", taskSize: 10, want: "1001"},
		{name: "two frames", input: "1001-1002", taskSize: 1, want: "1001,1002"},
		{name: "two frames large task", input: "1001-1002", taskSize: 5, want: "1001,1002"},
		{name: "one task", input: "1001-1005", taskSize: 10, want: "1001-1005"},
		{name: "degenerate dash", input: "1001-1001", taskSize: 1, want: "1001"},
		{name: "degenerate leftover", input: "1001-1001", taskSize: 4, want: "1001-1001"},
		{name: "three frames", input: "1-3", taskSize: 1, want: "1,3,2"},
		{name: "even split", input: "1-8", taskSize: 2, want: "1-2,7-8,5-6,3-4"},
		{name: "half up", input: "1001-1006", taskSize: 1, want: "1001,1006,1004,1003,1002,1005"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeSmartFrameList(tc.input, tc.taskSize)
			if err != nil {
				t.Fatalf("ComputeSmartFrameList(%q, %d): %v", tc.input, tc.taskSize, err)
			}
			if got != tc.want {
				t.Fatalf("ComputeSmartFrameList(%q, %d) = %q, want %q", tc.input, tc.taskSize, got, tc.want)
			}
		})
	}
}

func TestSchedulerHalfEvenRounding(t *testing.T) {
	s := NewScheduler(WithRounding(RoundHalfEven))
	got, err := s.SmartFrameList("1001-1006", 1)
	if err != nil {
		t.Fatalf("SmartFrameList: %v", err)
	}
	if want := "1001,1006,1003,1005,1002,1004"; got != want {
		t.Fatalf("half-even list = %q, want %q", got, want)
	}
	// Both rules agree whenever no midpoint lands on .5.
	got, err = s.SmartFrameList("1001-1005", 1)
	if err != nil {
		t.Fatalf("SmartFrameList: %v", err)
	}
	if want := "1001,1005,1003,1002,1004"; got != want {
		t.Fatalf("half-even documented list = %q, want %q", got, want)
	}
}

func TestComputeSmartFrameListRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		input    string
		taskSize int
		want     error
	}{
		{"abc", 1, ErrInvalidRangeFormat},
		{"1001-1005", 0, ErrInvalidTaskSize},
		{"1001-1005", -3, ErrInvalidTaskSize},
		{"1005-1001", 1, ErrInvalidRangeFormat},
		{"1001-1003-1005", 1, ErrInvalidRangeFormat},
		{"1001 -1005", 1, ErrInvalidRangeFormat},
		{" 1001", 1, ErrInvalidRangeFormat},
		{"-1001", 1, ErrInvalidRangeFormat},
		{"1001-", 1, ErrInvalidRangeFormat},
		{"+1001-1005", 1, ErrInvalidRangeFormat},
		{"", 1, ErrInvalidRangeFormat},
		{"10a1", 1, ErrInvalidRangeFormat},
		{"0-9223372036854775807", 1, ErrInvalidRangeFormat},
		{"1-99999999999", 1, ErrInvalidRangeFormat},
		{"1-1000001", 100, ErrInvalidRangeFormat},
		{"1001", 0, ErrInvalidTaskSize},
		{"99999999999999999999-99999999999999999999", 1, ErrInvalidRangeFormat},
	}
	for _, tc := range cases {
		got, err := ComputeSmartFrameList(tc.input, tc.taskSize)
		if !errors.Is(err, tc.want) {
			t.Fatalf("ComputeSmartFrameList(%q, %d) error = %v, want %v", tc.input, tc.taskSize, err, tc.want)
		}
		if got != "" {
			t.Fatalf("ComputeSmartFrameList(%q, %d) returned %q alongside an error", tc.input, tc.taskSize, got)
		}
	}
}

func TestComputeSmartFrameListLargestRange(t *testing.T) {
	input := fmt.Sprintf("1-%d", MaxFrames)
	list, err := ComputeSmartFrameList(input, 1000)
	if err != nil {
		t.Fatalf("ComputeSmartFrameList(%q, 1000): %v", input, err)
	}
	if got := len(strings.Split(list, ",")); got != MaxFrames/1000 {
		t.Fatalf("expected %d tokens, got %d", MaxFrames/1000, got)
	}
}

func TestSmartFrameListProperties(t *testing.T) {
	for _, rounding := range []Rounding{RoundHalfUp, RoundHalfEven} {
		s := NewScheduler(WithRounding(rounding))
		for first := 0; first <= 3; first += 3 {
			for length := 3; length <= 64; length++ {
				for taskSize := 1; taskSize <= 9; taskSize++ {
					r := FrameRange{First: 1000 + first, Last: 1000 + first + length - 1}
					input := r.String()
					list, err := s.SmartFrameList(input, taskSize)
					if err != nil {
						t.Fatalf("%s %q/%d: %v", rounding, input, taskSize, err)
					}
					if err := CheckCoverage(list, r); err != nil {
						t.Fatalf("%s %q/%d -> %q: %v", rounding, input, taskSize, list, err)
					}
					tokens := strings.Split(list, ",")
					wantTasks := (length + taskSize - 1) / taskSize
					if len(tokens) != wantTasks {
						t.Fatalf("%q/%d: %d tokens, want %d", input, taskSize, len(tokens), wantTasks)
					}
					if wantTasks > 2 {
						head, _ := ParseRange(tokens[0])
						tail, _ := ParseRange(tokens[1])
						if head.First != r.First || tail.Last != r.Last {
							t.Fatalf("%q/%d: first two tokens %q,%q do not span the range", input, taskSize, tokens[0], tokens[1])
						}
					}
				}
			}
		}
	}
}

// referenceOrder is the straightforward sort-and-scan bisection.
func referenceOrder(n int, rounding Rounding) []int {
	if n == 1 {
		return []int{0}
	}
	order := []int{0, n - 1}
	for i := 0; i < n-2; i++ {
		sorted := append([]int(nil), order...)
		sort.Ints(sorted)
		best, lo, hi := 0, 0, 0
		for k := 0; k+1 < len(sorted); k++ {
			if d := sorted[k+1] - sorted[k]; d > best {
				best, lo, hi = d, sorted[k], sorted[k+1]
			}
		}
		order = append(order, rounding.midpoint(lo, hi))
	}
	return order
}

func TestBisectOrderMatchesReference(t *testing.T) {
	for _, rounding := range []Rounding{RoundHalfUp, RoundHalfEven} {
		for n := 1; n <= 300; n++ {
			got := BisectOrder(n, rounding)
			want := referenceOrder(n, rounding)
			if fmt.Sprint(got) != fmt.Sprint(want) {
				t.Fatalf("BisectOrder(%d, %s) = %v, want %v", n, rounding, got, want)
			}
			seen := make(map[int]bool, n)
			for _, idx := range got {
				if idx < 0 || idx >= n || seen[idx] {
					t.Fatalf("BisectOrder(%d, %s) is not a permutation: %v", n, rounding, got)
				}
				seen[idx] = true
			}
		}
	}
}

func TestBisectOrderLargeRange(t *testing.T) {
	const n = 200000
	order := BisectOrder(n, RoundHalfUp)
	if len(order) != n {
		t.Fatalf("expected %d indices, got %d", n, len(order))
	}
	if order[0] != 0 || order[1] != n-1 || order[2] != n/2 {
		t.Fatalf("unexpected head %v", order[:3])
	}
}

func TestPlanOrderedTasks(t *testing.T) {
	plan, err := NewScheduler().Plan("1001-1010", 3)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Passthrough {
		t.Fatalf("expected a reordered plan")
	}
	ordered := plan.Ordered()
	if len(ordered) != 4 {
		t.Fatalf("expected 4 tasks, got %d", len(ordered))
	}
	if last := ordered[1]; last.Start != 1010 || last.End != 1010 || last.Token() != "1010-1010" {
		t.Fatalf("expected leftover task second, got %+v", last)
	}
	if plan.Tasks[0].Len() != 3 {
		t.Fatalf("expected full tasks of 3 frames, got %d", plan.Tasks[0].Len())
	}
}

func TestSchedulerConcurrentUse(t *testing.T) {
	s := NewScheduler()
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			input := fmt.Sprintf("%d-%d", 1000+i, 1100+i)
			list, err := s.SmartFrameList(input, 1+i%4)
			if err != nil {
				errs <- err
				return
			}
			r, _ := ParseRange(input)
			if err := CheckCoverage(list, r); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestParseRounding(t *testing.T) {
	if r, err := ParseRounding(""); err != nil || r != RoundHalfUp {
		t.Fatalf("empty rounding = %v, %v", r, err)
	}
	if r, err := ParseRounding("Half-Even"); err != nil || r != RoundHalfEven {
		t.Fatalf("half-even rounding = %v, %v", r, err)
	}
	if _, err := ParseRounding("banker"); err == nil {
		t.Fatalf("expected error for unknown rounding")
	}
}
