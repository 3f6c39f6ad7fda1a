package availability_overrides

import (
	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability/models"
)

// CreateOverrideRequest HTTP request model
type CreateOverrideRequest struct {
	Date      string  `json:"date"` // "2025-10-15"
	IsWorking bool    `json:"isWorking"`
	StartTime *string `json:"startTime,omitempty"` // "10:00", только для рабочего дня
	EndTime   *string `json:"endTime,omitempty"`
	Reason    *string `json:"reason,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса (с парсингом даты)
func (r *CreateOverrideRequest) ToServiceRequest(salonID, masterID, userID int64) (*models.CreateOverrideRequest, error) {
	date, err := handlers.ParseDate(r.Date)
	if err != nil {
		return nil, err
	}

	return &models.CreateOverrideRequest{
		SalonID:   salonID,
		MasterID:  masterID,
		UserID:    userID,
		Date:      date,
		IsWorking: r.IsWorking,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Reason:    r.Reason,
	}, nil
}
