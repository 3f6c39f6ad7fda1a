package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	createAppointment "github.com/m04kA/SMC-SalonBookingService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	ClientID  int64   `json:"clientId"` // 0 - запись на себя
	ServiceID int64   `json:"serviceId"`
	MasterID  int64   `json:"masterId"`
	StartTime string  `json:"startTime"` // RFC 3339, "2025-10-15T10:00:00+03:00"
	Notes     *string `json:"notes,omitempty"`
	Source    *string `json:"source,omitempty"` // manual | online | whatsapp
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(salonID, userID int64) (*createAppointment.Request, error) {
	startTime, err := time.Parse(time.RFC3339, r.StartTime)
	if err != nil {
		return nil, err
	}

	clientID := r.ClientID
	if clientID == 0 {
		clientID = userID
	}

	var source domain.BookingSource
	if r.Source != nil {
		source = domain.BookingSource(*r.Source)
	}

	return &createAppointment.Request{
		SalonID:   salonID,
		UserID:    userID,
		ClientID:  clientID,
		ServiceID: r.ServiceID,
		MasterID:  r.MasterID,
		StartTime: startTime,
		Notes:     r.Notes,
		Source:    source,
	}, nil
}
