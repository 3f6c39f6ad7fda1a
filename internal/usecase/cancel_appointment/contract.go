package cancel_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	Update(ctx context.Context, appointment *domain.Appointment) error
	AddHistory(ctx context.Context, h *domain.AppointmentHistory) error
}

// AccessChecker проверка прав пользователя в салоне
type AccessChecker interface {
	RequireParticipant(ctx context.Context, appointment *domain.Appointment, userID int64) (*salonservice.Salon, error)
}

// EventRecorder запись событий в outbox
type EventRecorder interface {
	Record(ctx context.Context, eventType domain.EventType, appointment, previous *domain.Appointment, occurredAt time.Time) error
}

// SlotCache инвалидация кэша слотов
type SlotCache interface {
	Invalidate(ctx context.Context, salonID int64, date time.Time) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчики переходов статуса
type Metrics interface {
	IncTransition(status string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
