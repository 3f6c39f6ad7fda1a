package time_blocks

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/service/timeblocks/models"
)

// CreateTimeBlockRequest HTTP request model
type CreateTimeBlockRequest struct {
	Type      string  `json:"type"` // BREAK | BLOCKED | PERSONAL
	Title     *string `json:"title,omitempty"`
	StartTime string  `json:"startTime"` // RFC 3339
	EndTime   string  `json:"endTime"`
	Recurring bool    `json:"recurring"`
	DayOfWeek *int    `json:"dayOfWeek,omitempty"` // 1..7; по умолчанию день недели startTime
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateTimeBlockRequest) ToServiceRequest(salonID, masterID, userID int64) (*models.CreateTimeBlockRequest, error) {
	start, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(time.RFC3339, r.EndTime)
	if err != nil {
		return nil, err
	}

	return &models.CreateTimeBlockRequest{
		SalonID:   salonID,
		MasterID:  masterID,
		UserID:    userID,
		Type:      r.Type,
		Title:     r.Title,
		StartTime: start,
		EndTime:   end,
		Recurring: r.Recurring,
		DayOfWeek: r.DayOfWeek,
	}, nil
}
