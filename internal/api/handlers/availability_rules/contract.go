package availability_rules

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability/models"
)

type AvailabilityService interface {
	GetRules(ctx context.Context, salonID, masterID int64) (*models.RulesResponse, error)
	SetRules(ctx context.Context, req *models.SetRulesRequest) (*models.RulesResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
