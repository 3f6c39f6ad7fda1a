package availability

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrMasterNotFound возвращается, когда мастер не найден
	ErrMasterNotFound = fmt.Errorf("availability: master not found: %w", domain.ErrNotFound)

	// ErrOverrideNotFound возвращается, когда исключения на дату нет
	ErrOverrideNotFound = fmt.Errorf("availability: override not found: %w", domain.ErrNotFound)

	// ErrOverrideExists возвращается при попытке создать второе исключение на дату
	ErrOverrideExists = errors.New("availability: override for this date already exists")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("availability: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("availability: internal error")
)
