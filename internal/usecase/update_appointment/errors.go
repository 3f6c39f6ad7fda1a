package update_appointment

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
)

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = fmt.Errorf("update_appointment: salon not found: %w", domain.ErrNotFound)

	// ErrAppointmentNotFound возвращается, когда запись не найдена в салоне
	ErrAppointmentNotFound = fmt.Errorf("update_appointment: appointment not found: %w", domain.ErrNotFound)

	// ErrMasterNotFound возвращается, когда новый мастер не найден в салоне
	ErrMasterNotFound = fmt.Errorf("update_appointment: master not found: %w", domain.ErrNotFound)

	// ErrMasterInactive возвращается, когда новый мастер не принимает записи
	ErrMasterInactive = fmt.Errorf("update_appointment: master is inactive: %w", domain.ErrPolicyViolation)

	// ErrMasterNotQualified возвращается, когда новый мастер не оказывает услугу
	ErrMasterNotQualified = fmt.Errorf("update_appointment: master does not provide the service: %w", domain.ErrPolicyViolation)

	// ErrNotReschedulable возвращается при переносе начатой или завершённой записи
	ErrNotReschedulable = fmt.Errorf("update_appointment: appointment cannot be rescheduled: %w", domain.ErrInvalidStateTransition)

	// ErrSlotNotAvailable возвращается, когда новое время занято к моменту фиксации
	ErrSlotNotAvailable = fmt.Errorf("update_appointment: slot is not available: %w", domain.ErrBookingConflict)

	// ErrAccessDenied возвращается, когда пользователь не может менять запись
	ErrAccessDenied = fmt.Errorf("update_appointment: %w", access.ErrAccessDenied)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("update_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_appointment: internal error")
)
