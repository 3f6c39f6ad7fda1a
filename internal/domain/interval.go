package domain

import (
	"fmt"
	"sort"
	"time"
)

// TimeInterval is a half-open time range [Start, End).
// A valid interval always has Start < End.
type TimeInterval struct {
	Start time.Time
	End   time.Time
}

// NewTimeInterval builds a validated interval
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	iv := TimeInterval{Start: start, End: end}
	if err := iv.Validate(); err != nil {
		return TimeInterval{}, err
	}
	return iv, nil
}

// Validate returns ErrInvalidInterval for zero-length or inverted intervals
func (iv TimeInterval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("%w: start=%s end=%s", ErrInvalidInterval,
			iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
	}
	return nil
}

// Duration returns End - Start
func (iv TimeInterval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether two intervals share any instant.
// Touching endpoints do not overlap.
func (iv TimeInterval) Overlaps(other TimeInterval) bool {
	return Overlaps(iv, other)
}

// Contains reports whether other lies entirely inside iv
func (iv TimeInterval) Contains(other TimeInterval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// ContainsInstant reports whether t is in [Start, End)
func (iv TimeInterval) ContainsInstant(t time.Time) bool {
	return !t.Before(iv.Start) && t.Before(iv.End)
}

// Intersect returns the common part of two intervals, ok=false if they do not overlap
func (iv TimeInterval) Intersect(other TimeInterval) (TimeInterval, bool) {
	if !Overlaps(iv, other) {
		return TimeInterval{}, false
	}
	return TimeInterval{
		Start: maxTime(iv.Start, other.Start),
		End:   minTime(iv.End, other.End),
	}, true
}

// Expand widens the interval by before and after
func (iv TimeInterval) Expand(before, after time.Duration) TimeInterval {
	return TimeInterval{Start: iv.Start.Add(-before), End: iv.End.Add(after)}
}

func (iv TimeInterval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}

// Overlaps is true iff a.Start < b.End && b.Start < a.End
func Overlaps(a, b TimeInterval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Subtract removes every cut from base and returns the remaining pieces sorted by start.
// Cuts may be unsorted and may overlap each other.
func Subtract(base TimeInterval, cuts []TimeInterval) ([]TimeInterval, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}

	merged, err := MergeOverlapping(cuts)
	if err != nil {
		return nil, err
	}

	result := make([]TimeInterval, 0, len(merged)+1)
	cursor := base.Start

	for _, cut := range merged {
		if !cut.End.After(cursor) {
			continue
		}
		if !cut.Start.Before(base.End) {
			break
		}
		if cut.Start.After(cursor) {
			result = append(result, TimeInterval{Start: cursor, End: cut.Start})
		}
		cursor = maxTime(cursor, cut.End)
		if !cursor.Before(base.End) {
			return result, nil
		}
	}

	if cursor.Before(base.End) {
		result = append(result, TimeInterval{Start: cursor, End: base.End})
	}

	return result, nil
}

// SubtractAll applies Subtract to every base interval and concatenates the results
func SubtractAll(bases []TimeInterval, cuts []TimeInterval) ([]TimeInterval, error) {
	result := make([]TimeInterval, 0, len(bases))
	for _, base := range bases {
		free, err := Subtract(base, cuts)
		if err != nil {
			return nil, err
		}
		result = append(result, free...)
	}
	sortIntervals(result)
	return result, nil
}

// MergeOverlapping sorts intervals by start and merges overlapping or touching ones.
// The input slice is not modified.
func MergeOverlapping(intervals []TimeInterval) ([]TimeInterval, error) {
	if len(intervals) == 0 {
		return []TimeInterval{}, nil
	}

	sorted := make([]TimeInterval, len(intervals))
	copy(sorted, intervals)
	for _, iv := range sorted {
		if err := iv.Validate(); err != nil {
			return nil, err
		}
	}
	sortIntervals(sorted)

	result := make([]TimeInterval, 0, len(sorted))
	current := sorted[0]
	for _, iv := range sorted[1:] {
		if !iv.Start.After(current.End) {
			current.End = maxTime(current.End, iv.End)
			continue
		}
		result = append(result, current)
		current = iv
	}
	result = append(result, current)

	return result, nil
}

func sortIntervals(intervals []TimeInterval) {
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Start.Equal(intervals[j].Start) {
			return intervals[i].End.Before(intervals[j].End)
		}
		return intervals[i].Start.Before(intervals[j].Start)
	})
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
