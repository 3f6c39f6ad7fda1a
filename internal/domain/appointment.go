package domain

import (
	"fmt"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "pending"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// allowedTransitions forward-only status graph; missing keys are terminal
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted},
}

// ParseAppointmentStatus converts a raw string into a known status
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	status := AppointmentStatus(s)
	switch status {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return status, nil
	default:
		return "", fmt.Errorf("unknown appointment status %q", s)
	}
}

// IsTerminal returns true when no transition out of the status exists
func (s AppointmentStatus) IsTerminal() bool {
	_, ok := allowedTransitions[s]
	return !ok
}

// OccupiesSlot returns true if an appointment in this status blocks the master's time
func (s AppointmentStatus) OccupiesSlot() bool {
	return s != StatusCancelled && s != StatusNoShow
}

// CanTransitionTo reports whether the state machine allows s -> next
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidStateTransition when s -> next is not allowed
func (s AppointmentStatus) ValidateTransition(next AppointmentStatus) error {
	if !s.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, s, next)
	}
	return nil
}

// BookingSource channel through which an appointment was created
type BookingSource string

const (
	SourceManual   BookingSource = "manual"
	SourceOnline   BookingSource = "online"
	SourceWhatsApp BookingSource = "whatsapp"
)

// IsValid returns true for known channels
func (s BookingSource) IsValid() bool {
	return s == SourceManual || s == SourceOnline || s == SourceWhatsApp
}

// Appointment represents a client booking with a master for a service
type Appointment struct {
	ID              int64
	SalonID         int64
	ClientID        int64
	MasterID        int64
	ServiceID       int64
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	// ServiceBufferMinutes buffer of the service at booking time; the salon buffer is added on top
	ServiceBufferMinutes int
	Status               AppointmentStatus
	Source               BookingSource

	// Denormalized data for history
	ServiceName string
	Price       float64
	Currency    string
	Notes       *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Interval returns the raw [StartTime, EndTime) of the appointment
func (a *Appointment) Interval() TimeInterval {
	return TimeInterval{Start: a.StartTime, End: a.EndTime}
}

// BufferedInterval returns the interval blocked for other bookings:
// [start - buffer, end + buffer) with buffer = salon buffer + service buffer
// Both buffers are clamped to 0..MaxBufferMinutes, so the result is never inverted
func (a *Appointment) BufferedInterval(salonBufferMinutes int) TimeInterval {
	buffer := time.Duration(clampBuffer(salonBufferMinutes)+clampBuffer(a.ServiceBufferMinutes)) * time.Minute
	return a.Interval().Expand(buffer, buffer)
}

// IsActive returns true if the appointment occupies the master's time
func (a *Appointment) IsActive() bool {
	return a.Status.OccupiesSlot()
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status.CanTransitionTo(StatusCancelled)
}

// CanBeRescheduled returns true if start time or master may still change
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusPending || a.Status == StatusConfirmed
}

// AppointmentsFilter filter for salon appointment listings
type AppointmentsFilter struct {
	SalonID         int64              // required
	MasterID        *int64             // optional
	ClientID        *int64             // optional
	From            *time.Time         // appointments ending after From
	To              *time.Time         // appointments starting before To
	Status          *AppointmentStatus // optional exact status
	IncludeInactive bool               // include cancelled and no-show
}

// OccupancyFilter selects active appointments of one master overlapping a range
type OccupancyFilter struct {
	SalonID              int64
	MasterID             int64
	From                 time.Time
	To                   time.Time
	ExcludeAppointmentID *int64
}

func clampBuffer(minutes int) int {
	return min(max(minutes, 0), MaxBufferMinutes)
}
