package domain

// Default booking policy values
const (
	DefaultMinAdvanceMinutes = 60
	DefaultMaxFutureDays     = 30
	DefaultBufferMinutes     = 10
	DefaultSlotStepMinutes   = 15
)

// Business validation constants
const (
	MinSlotStepMinutes          = 5
	MaxSlotStepMinutes          = 120
	MaxMinAdvanceMinutes        = 10080 // 1 week
	MaxFutureDaysLimit          = 365   // 1 year
	MaxBufferMinutes            = 240
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxOverrideReasonLength     = 255
	MaxTimeBlockTitleLength     = 255
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// InactiveStatuses statuses that free the master's time
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusNoShow,
}

// ActiveStatuses statuses that occupy the master's time
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
}
