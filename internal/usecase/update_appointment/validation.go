package update_appointment

import (
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) (*domain.AppointmentStatus, error) {
	if req.SalonID <= 0 {
		return nil, fmt.Errorf("%w: salonId must be positive", ErrInvalidInput)
	}

	if req.AppointmentID <= 0 {
		return nil, fmt.Errorf("%w: appointmentId must be positive", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}

	if !req.IsReschedule() && req.Status == nil && req.Notes == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	if req.StartTime != nil && req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: startTime is invalid", ErrInvalidInput)
	}

	if req.MasterID != nil && *req.MasterID <= 0 {
		return nil, fmt.Errorf("%w: masterId must be positive", ErrInvalidInput)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return nil, fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	if req.Status == nil {
		return nil, nil
	}

	status, err := domain.ParseAppointmentStatus(*req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return &status, nil
}
