package validator

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrOutsideBookingWindow начало раньше минимального срока или дальше горизонта записи
	ErrOutsideBookingWindow = fmt.Errorf("validator: start is outside the booking window: %w", domain.ErrPolicyViolation)

	// ErrOutsideWorkingHours интервал не помещается в рабочие часы мастера
	ErrOutsideWorkingHours = fmt.Errorf("validator: interval is outside working hours: %w", domain.ErrPolicyViolation)

	// ErrSlotTaken интервал с буфером пересекает занятое время мастера
	ErrSlotTaken = fmt.Errorf("validator: slot is already taken: %w", domain.ErrBookingConflict)

	// ErrInternal возвращается при ошибках чтения расписания или занятости
	ErrInternal = errors.New("validator: internal error")
)
