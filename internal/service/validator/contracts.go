package validator

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/occupancy"
)

// WorkingHoursResolver рабочие интервалы мастера на дату
type WorkingHoursResolver interface {
	WorkingIntervals(ctx context.Context, salonID, masterID int64, date time.Time, loc *time.Location) ([]domain.TimeInterval, error)
}

// OccupancyAggregator занятые интервалы мастера
type OccupancyAggregator interface {
	OccupiedIntervals(ctx context.Context, q occupancy.Query) ([]domain.TimeInterval, error)
}
