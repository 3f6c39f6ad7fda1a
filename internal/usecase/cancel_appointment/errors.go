package cancel_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена в салоне
	ErrAppointmentNotFound = fmt.Errorf("cancel_appointment: appointment not found: %w", domain.ErrNotFound)

	// ErrCannotCancel возвращается, когда запись уже в конечном статусе или начата
	ErrCannotCancel = fmt.Errorf("cancel_appointment: appointment cannot be cancelled: %w", domain.ErrInvalidStateTransition)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("cancel_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_appointment: internal error")
)
