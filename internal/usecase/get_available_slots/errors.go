package get_available_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = fmt.Errorf("get_available_slots: salon not found: %w", domain.ErrNotFound)

	// ErrServiceNotFound возвращается, когда услуга не найдена в салоне
	ErrServiceNotFound = fmt.Errorf("get_available_slots: service not found: %w", domain.ErrNotFound)

	// ErrMasterNotFound возвращается, когда мастер не найден в салоне
	ErrMasterNotFound = fmt.Errorf("get_available_slots: master not found: %w", domain.ErrNotFound)

	// ErrMasterNotQualified возвращается, когда мастер не оказывает услугу
	ErrMasterNotQualified = errors.New("get_available_slots: master does not provide the service")

	// ErrServiceInactive возвращается, когда услуга отключена
	ErrServiceInactive = errors.New("get_available_slots: service is inactive")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
