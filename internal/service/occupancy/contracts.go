package occupancy

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetOccupying(ctx context.Context, filter domain.OccupancyFilter) ([]*domain.Appointment, error)
}

// TimeBlockRepository интерфейс репозитория блоков времени
type TimeBlockRepository interface {
	GetForMaster(ctx context.Context, salonID, masterID int64, rng domain.TimeInterval) ([]*domain.TimeBlock, error)
}
