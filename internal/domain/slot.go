package domain

import (
	"sort"
	"time"
)

// CandidateSlot bookable, not yet committed start/end for a master
type CandidateSlot struct {
	StartTime time.Time
	EndTime   time.Time
	MasterID  int64
}

// Interval returns [StartTime, EndTime)
func (s CandidateSlot) Interval() TimeInterval {
	return TimeInterval{Start: s.StartTime, End: s.EndTime}
}

// SortSlots orders slots by start time, then by master id
func SortSlots(slots []CandidateSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime.Equal(slots[j].StartTime) {
			return slots[i].MasterID < slots[j].MasterID
		}
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
}

// BufferedWithin returns the interval a candidate blocks together with its buffer:
// [start - buffer, end + buffer) clipped to the working interval that contains the candidate
func BufferedWithin(candidate, working TimeInterval, buffer time.Duration) TimeInterval {
	buffered := candidate.Expand(buffer, buffer)
	if clipped, ok := buffered.Intersect(working); ok {
		return clipped
	}
	return candidate
}
