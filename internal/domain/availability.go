package domain

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// WeeklyAvailabilityRule recurring working hours of a master for one day of week.
// DayOfWeek uses ISO numbering: Monday = 1 ... Sunday = 7.
type WeeklyAvailabilityRule struct {
	ID        int64
	SalonID   int64
	MasterID  int64
	DayOfWeek int
	StartTime types.TimeString
	EndTime   types.TimeString
	IsWorking bool
	UpdatedAt time.Time
}

// AvailabilityOverride date-specific exception that fully replaces the weekly rule
type AvailabilityOverride struct {
	ID        int64
	SalonID   int64
	MasterID  int64
	Date      time.Time // calendar date, time part ignored
	IsWorking bool
	StartTime *types.TimeString
	EndTime   *types.TimeString
	Reason    *string
	CreatedAt time.Time
}

// ISOWeekday converts time.Weekday (Sunday = 0) to ISO numbering (Monday = 1, Sunday = 7)
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WorkingInterval projects local working hours onto a date in loc
func WorkingInterval(date time.Time, start, end types.TimeString, loc *time.Location) (TimeInterval, error) {
	return NewTimeInterval(start.On(date, loc), end.On(date, loc))
}
