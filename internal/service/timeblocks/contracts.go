package timeblocks

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
)

// TimeBlockRepository интерфейс репозитория блоков времени
type TimeBlockRepository interface {
	Create(ctx context.Context, block *domain.TimeBlock) (*domain.TimeBlock, error)
	GetByID(ctx context.Context, id int64) (*domain.TimeBlock, error)
	GetForMaster(ctx context.Context, salonID, masterID int64, rng domain.TimeInterval) ([]*domain.TimeBlock, error)
	Delete(ctx context.Context, id int64) error
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetOccupying(ctx context.Context, filter domain.OccupancyFilter) ([]*domain.Appointment, error)
	LockMaster(ctx context.Context, salonID, masterID int64) error
}

// AccessChecker проверка прав пользователя в салоне
type AccessChecker interface {
	Salon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
	Master(ctx context.Context, salonID, masterID int64) (*salonservice.Master, error)
	RequireScheduleEditor(ctx context.Context, salonID, masterID, userID int64) (*salonservice.Salon, *salonservice.Master, error)
}

// SlotCache инвалидация кэша слотов
type SlotCache interface {
	Invalidate(ctx context.Context, salonID int64, date time.Time) error
	InvalidateSalon(ctx context.Context, salonID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
