package create_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
)

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = fmt.Errorf("create_appointment: salon not found: %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена в салоне
	ErrServiceNotFound = fmt.Errorf("create_appointment: service not found: %w", domain.ErrNotFound)

	// ErrMasterNotFound возвращается, когда мастер не найден в салоне
	ErrMasterNotFound = fmt.Errorf("create_appointment: master not found: %w", domain.ErrNotFound)

	// ErrClientNotFound возвращается, когда клиент не найден в салоне
	ErrClientNotFound = fmt.Errorf("create_appointment: client not found: %w", domain.ErrNotFound)

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = fmt.Errorf("create_appointment: service is inactive: %w", domain.ErrPolicyViolation)

	// ErrMasterInactive возвращается, когда мастер не принимает записи
	ErrMasterInactive = fmt.Errorf("create_appointment: master is inactive: %w", domain.ErrPolicyViolation)

	// ErrMasterNotQualified возвращается, когда мастер не оказывает услугу
	ErrMasterNotQualified = fmt.Errorf("create_appointment: master does not provide the service: %w", domain.ErrPolicyViolation)

	// ErrClientBlocked возвращается, когда клиент заблокирован салоном
	ErrClientBlocked = fmt.Errorf("create_appointment: client is blocked: %w", domain.ErrPolicyViolation)

	// ErrSlotNotAvailable возвращается, когда слот занят к моменту фиксации
	ErrSlotNotAvailable = fmt.Errorf("create_appointment: slot is not available: %w", domain.ErrBookingConflict)

	// ErrAccessDenied возвращается, когда пользователь записывает другого клиента
	ErrAccessDenied = fmt.Errorf("create_appointment: cannot book for another client: %w", access.ErrAccessDenied)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
