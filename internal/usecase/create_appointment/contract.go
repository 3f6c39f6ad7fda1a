package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/clientservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/validator"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	LockMaster(ctx context.Context, salonID, masterID int64) error
	Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error)
	AddHistory(ctx context.Context, h *domain.AppointmentHistory) error
}

// SalonServiceClient интерфейс клиента для SalonService
type SalonServiceClient interface {
	GetSalon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
	GetService(ctx context.Context, salonID, serviceID int64) (*salonservice.Service, error)
	GetMaster(ctx context.Context, salonID, masterID int64) (*salonservice.Master, error)
}

// ClientServiceClient интерфейс клиента для ClientService
type ClientServiceClient interface {
	Admit(ctx context.Context, salonID, clientID int64) (clientservice.Admission, error)
}

// PolicyProvider действующая политика бронирования салона
type PolicyProvider interface {
	Resolve(ctx context.Context, salonID int64) (*domain.BookingPolicy, error)
}

// BookingValidator проверка интервала перед фиксацией
type BookingValidator interface {
	Check(ctx context.Context, c validator.Candidate, policy *domain.BookingPolicy, loc *time.Location, now time.Time) error
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
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счётчики бронирования
type Metrics interface {
	IncAppointmentCreated(source string)
	IncBookingConflict(operation string)
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
