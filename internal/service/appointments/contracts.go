package appointments

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	GetByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	GetHistory(ctx context.Context, appointmentID int64) ([]*domain.AppointmentHistory, error)
}

// AccessChecker проверка прав пользователя в салоне
type AccessChecker interface {
	Salon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
	Master(ctx context.Context, salonID, masterID int64) (*salonservice.Master, error)
	RequireParticipant(ctx context.Context, appointment *domain.Appointment, userID int64) (*salonservice.Salon, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
