package timeblocks

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrTimeBlockNotFound возвращается, когда блок не найден у мастера
	ErrTimeBlockNotFound = fmt.Errorf("timeblocks: time block not found: %w", domain.ErrNotFound)

	// ErrOverlapsAppointment возвращается, когда блок пересекает активную запись
	ErrOverlapsAppointment = fmt.Errorf("timeblocks: block overlaps an active appointment: %w", domain.ErrBookingConflict)

	// ErrOverlapsBlock возвращается, когда блок пересекает блок другого типа
	ErrOverlapsBlock = fmt.Errorf("timeblocks: block overlaps a block of another type: %w", domain.ErrBookingConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("timeblocks: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("timeblocks: internal error")
)
