package access

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
)

// SalonServiceClient интерфейс клиента для SalonService
type SalonServiceClient interface {
	GetSalon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
	GetMaster(ctx context.Context, salonID, masterID int64) (*salonservice.Master, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
