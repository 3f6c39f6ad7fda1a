package time_blocks

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/timeblocks/models"
)

type TimeBlockService interface {
	Create(ctx context.Context, req *models.CreateTimeBlockRequest) (*models.TimeBlockResponse, error)
	List(ctx context.Context, salonID, masterID int64, from, to time.Time) (*models.TimeBlockListResponse, error)
	Delete(ctx context.Context, salonID, masterID, blockID, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
