package domain

import "time"

// BookingPolicy per-salon booking constraints
type BookingPolicy struct {
	ID                int64
	SalonID           int64
	MinAdvanceMinutes int
	MaxFutureDays     int // 0 = unlimited
	BufferMinutes     int
	SlotStepMinutes   int
	AutoConfirm       bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DefaultBookingPolicy policy applied when the salon has not configured one
func DefaultBookingPolicy(salonID int64) *BookingPolicy {
	return &BookingPolicy{
		SalonID:           salonID,
		MinAdvanceMinutes: DefaultMinAdvanceMinutes,
		MaxFutureDays:     DefaultMaxFutureDays,
		BufferMinutes:     DefaultBufferMinutes,
		SlotStepMinutes:   DefaultSlotStepMinutes,
		AutoConfirm:       false,
	}
}

// HasHorizon returns true if there's a limit on how far in advance bookings can be made
func (p *BookingPolicy) HasHorizon() bool {
	return p.MaxFutureDays > 0
}

// EarliestStart first instant a new appointment may start at
func (p *BookingPolicy) EarliestStart(now time.Time) time.Time {
	return now.Add(time.Duration(p.MinAdvanceMinutes) * time.Minute)
}

// HorizonEnd exclusive upper bound for appointment starts: midnight after today + MaxFutureDays in loc.
// ok=false when the policy has no horizon.
func (p *BookingPolicy) HorizonEnd(now time.Time, loc *time.Location) (time.Time, bool) {
	if !p.HasHorizon() {
		return time.Time{}, false
	}
	return startOfDay(now.In(loc)).AddDate(0, 0, p.MaxFutureDays+1), true
}

// AllowsStart checks min-advance (inclusive) and the future horizon
func (p *BookingPolicy) AllowsStart(start, now time.Time, loc *time.Location) bool {
	if start.Before(p.EarliestStart(now)) {
		return false
	}
	if horizon, ok := p.HorizonEnd(now, loc); ok && !start.Before(horizon) {
		return false
	}
	return true
}
