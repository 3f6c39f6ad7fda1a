package update_appointment

import (
	"github.com/m04kA/SMC-SalonBookingService/internal/api/handlers"
	updateAppointment "github.com/m04kA/SMC-SalonBookingService/internal/usecase/update_appointment"
)

// UpdateAppointmentRequest HTTP request model; отсутствующие поля не меняются
type UpdateAppointmentRequest struct {
	StartTime *string `json:"startTime,omitempty"` // RFC 3339
	MasterID  *int64  `json:"masterId,omitempty"`
	Status    *string `json:"status,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateAppointmentRequest) ToUseCaseRequest(salonID, appointmentID, userID int64) (*updateAppointment.Request, error) {
	req := &updateAppointment.Request{
		SalonID:       salonID,
		AppointmentID: appointmentID,
		UserID:        userID,
		MasterID:      r.MasterID,
		Status:        r.Status,
		Notes:         r.Notes,
	}

	if r.StartTime != nil {
		startTime, err := handlers.ParseOptionalTime(*r.StartTime)
		if err != nil {
			return nil, err
		}
		req.StartTime = startTime
	}

	return req, nil
}
