package create_appointment

import (
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.SalonID <= 0 {
		return fmt.Errorf("%w: salonId must be positive", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}

	if req.ClientID <= 0 {
		return fmt.Errorf("%w: clientId must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceId must be positive", ErrInvalidInput)
	}

	if req.MasterID <= 0 {
		return fmt.Errorf("%w: masterId must be positive", ErrInvalidInput)
	}

	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	if req.Source != "" && !req.Source.IsValid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidInput, req.Source)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must not exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}

// resolveSource канал записи: менеджер по умолчанию записывает вручную, клиент - онлайн
// Ручную запись может создать только менеджер
func resolveSource(requested domain.BookingSource, isManager bool) (domain.BookingSource, error) {
	switch {
	case requested == "" && isManager:
		return domain.SourceManual, nil
	case requested == "":
		return domain.SourceOnline, nil
	case requested == domain.SourceManual && !isManager:
		return "", fmt.Errorf("%w: only salon managers create manual appointments", ErrAccessDenied)
	}
	return requested, nil
}

// initialStatus ручные записи и салоны с автоподтверждением сразу подтверждены
func initialStatus(source domain.BookingSource, policy *domain.BookingPolicy) domain.AppointmentStatus {
	if source == domain.SourceManual || policy.AutoConfirm {
		return domain.StatusConfirmed
	}
	return domain.StatusPending
}
