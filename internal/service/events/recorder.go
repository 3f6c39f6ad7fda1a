package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Recorder записывает события изменения записей в outbox
// Вызывается внутри транзакции изменения: событие публикуется только после фиксации
type Recorder struct {
	repo OutboxRepository
}

// NewRecorder создает новый экземпляр записи событий
func NewRecorder(repo OutboxRepository) *Recorder {
	return &Recorder{repo: repo}
}

// Record сохраняет событие по текущему состоянию записи
// previous - состояние до изменения, nil для новой записи
func (r *Recorder) Record(
	ctx context.Context,
	eventType domain.EventType,
	appointment *domain.Appointment,
	previous *domain.Appointment,
	occurredAt time.Time,
) error {
	event := NewAppointmentEvent(eventType, appointment, previous, occurredAt)

	outboxEvent, err := ToOutbox(event)
	if err != nil {
		return err
	}

	if err := r.repo.Insert(ctx, outboxEvent); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

// NewAppointmentEvent собирает событие с новым идентификатором
func NewAppointmentEvent(
	eventType domain.EventType,
	appointment *domain.Appointment,
	previous *domain.Appointment,
	occurredAt time.Time,
) *domain.AppointmentEvent {
	event := &domain.AppointmentEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		AppointmentID: appointment.ID,
		SalonID:       appointment.SalonID,
		MasterID:      appointment.MasterID,
		ClientID:      appointment.ClientID,
		ServiceID:     appointment.ServiceID,
		Status:        appointment.Status,
		StartTime:     appointment.StartTime,
		EndTime:       appointment.EndTime,
		OccurredAt:    occurredAt.UTC(),
	}

	if previous != nil {
		if !previous.StartTime.Equal(appointment.StartTime) {
			start := previous.StartTime
			event.PreviousStartTime = &start
		}
		if previous.MasterID != appointment.MasterID {
			masterID := previous.MasterID
			event.PreviousMasterID = &masterID
		}
	}

	return event
}

// ToOutbox упаковывает событие в строку outbox; ключ партиционирования - мастер
func ToOutbox(event *domain.AppointmentEvent) (*domain.OutboxEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	return &domain.OutboxEvent{
		EventID:       event.EventID,
		AggregateType: domain.AggregateAppointment,
		AggregateID:   event.AppointmentID,
		EventType:     event.Type,
		Key:           strconv.FormatInt(event.MasterID, 10),
		Payload:       payload,
	}, nil
}
