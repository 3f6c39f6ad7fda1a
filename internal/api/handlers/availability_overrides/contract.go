package availability_overrides

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability/models"
)

type AvailabilityService interface {
	GetOverrides(ctx context.Context, salonID, masterID int64, from, to time.Time) (*models.OverrideListResponse, error)
	CreateOverride(ctx context.Context, req *models.CreateOverrideRequest) (*models.OverrideResponse, error)
	DeleteOverride(ctx context.Context, salonID, masterID, userID int64, date time.Time) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
