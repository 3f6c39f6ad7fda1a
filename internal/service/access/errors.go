package access

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrAccessDenied возвращается, когда у пользователя нет прав на операцию
	ErrAccessDenied = errors.New("access: access denied")

	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = fmt.Errorf("access: salon not found: %w", domain.ErrNotFound)

	// ErrMasterNotFound возвращается, когда мастер не найден в салоне
	ErrMasterNotFound = fmt.Errorf("access: master not found: %w", domain.ErrNotFound)

	// ErrInternal возвращается при недоступности SalonService
	ErrInternal = errors.New("access: internal error")
)
