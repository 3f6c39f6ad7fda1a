package domain

import "time"

// EventType type of appointment change signal
type EventType string

const (
	EventAppointmentCreated       EventType = "appointment.created"
	EventAppointmentRescheduled   EventType = "appointment.rescheduled"
	EventAppointmentStatusChanged EventType = "appointment.status_changed"
	EventAppointmentCancelled     EventType = "appointment.cancelled"
)

// AggregateAppointment aggregate type stored in the outbox
const AggregateAppointment = "appointment"

// AppointmentEvent payload published after a successful commit
type AppointmentEvent struct {
	EventID           string            `json:"eventId"`
	Type              EventType         `json:"type"`
	AppointmentID     int64             `json:"appointmentId"`
	SalonID           int64             `json:"salonId"`
	MasterID          int64             `json:"masterId"`
	ClientID          int64             `json:"clientId"`
	ServiceID         int64             `json:"serviceId"`
	Status            AppointmentStatus `json:"status"`
	StartTime         time.Time         `json:"startTime"`
	EndTime           time.Time         `json:"endTime"`
	PreviousStartTime *time.Time        `json:"previousStartTime,omitempty"`
	PreviousMasterID  *int64            `json:"previousMasterId,omitempty"`
	OccurredAt        time.Time         `json:"occurredAt"`
}

// OutboxEvent row of the transactional outbox
type OutboxEvent struct {
	ID            int64
	EventID       string
	AggregateType string
	AggregateID   int64
	EventType     EventType
	Key           string
	Payload       []byte
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Attempts      int
}
