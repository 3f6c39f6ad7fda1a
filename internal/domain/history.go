package domain

import "time"

// HistoryAction kind of change recorded in appointment history
type HistoryAction string

const (
	ActionCreated       HistoryAction = "created"
	ActionRescheduled   HistoryAction = "rescheduled"
	ActionStatusChanged HistoryAction = "status_changed"
	ActionCancelled     HistoryAction = "cancelled"
	ActionUpdated       HistoryAction = "updated"
)

// AppointmentHistory audit record of one appointment change
type AppointmentHistory struct {
	ID            int64
	AppointmentID int64
	Action        HistoryAction
	OldStatus     *AppointmentStatus
	NewStatus     *AppointmentStatus
	OldStartTime  *time.Time
	NewStartTime  *time.Time
	OldMasterID   *int64
	NewMasterID   *int64
	ChangedBy     int64
	Notes         *string
	CreatedAt     time.Time
}
