package domain

import "time"

// TimeBlockType intent of a self-imposed unavailable interval
type TimeBlockType string

const (
	TimeBlockBreak    TimeBlockType = "BREAK"
	TimeBlockBlocked  TimeBlockType = "BLOCKED"
	TimeBlockPersonal TimeBlockType = "PERSONAL"
)

// IsValid returns true for known block types
func (t TimeBlockType) IsValid() bool {
	return t == TimeBlockBreak || t == TimeBlockBlocked || t == TimeBlockPersonal
}

// TimeBlock interval during which a master cannot be booked.
// A recurring block repeats weekly on DayOfWeek at the local times of StartTime/EndTime.
type TimeBlock struct {
	ID        int64
	SalonID   int64
	MasterID  int64
	Type      TimeBlockType
	Title     *string
	StartTime time.Time
	EndTime   time.Time
	Recurring bool
	DayOfWeek *int
	CreatedAt time.Time
}

// Interval returns [StartTime, EndTime)
func (b *TimeBlock) Interval() TimeInterval {
	return TimeInterval{Start: b.StartTime, End: b.EndTime}
}

// OccurrencesIn returns every occurrence of the block that overlaps rng.
// Local times are taken in loc, so recurring blocks keep their wall-clock time across DST changes.
func (b *TimeBlock) OccurrencesIn(rng TimeInterval, loc *time.Location) []TimeInterval {
	if !b.Recurring {
		if Overlaps(b.Interval(), rng) {
			return []TimeInterval{b.Interval()}
		}
		return nil
	}

	localStart := b.StartTime.In(loc)
	localEnd := b.EndTime.In(loc)
	length := localEnd.Sub(localStart)
	if length <= 0 {
		return nil
	}

	weekday := ISOWeekday(localStart)
	if b.DayOfWeek != nil {
		weekday = *b.DayOfWeek
	}

	var result []TimeInterval
	// Начинаем на день раньше, чтобы захватить блоки, переходящие через полночь
	day := startOfDay(rng.Start.In(loc)).AddDate(0, 0, -1)
	for !day.After(rng.End.In(loc)) {
		if ISOWeekday(day) == weekday {
			start := time.Date(day.Year(), day.Month(), day.Day(),
				localStart.Hour(), localStart.Minute(), 0, 0, loc)
			occurrence := TimeInterval{Start: start, End: start.Add(length)}
			// Повторения не раньше исходного блока
			if !occurrence.Start.Before(b.StartTime) && Overlaps(occurrence, rng) {
				result = append(result, occurrence)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return result
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
