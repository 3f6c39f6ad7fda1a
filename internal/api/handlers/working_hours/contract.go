package working_hours

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability/models"
)

type AvailabilityService interface {
	GetWorkingHours(ctx context.Context, salonID, masterID int64, date time.Time) (*models.WorkingHoursResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
