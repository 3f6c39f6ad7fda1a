package salonservice

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// Salon модель салона из SalonService
type Salon struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Timezone   string  `json:"timezone"` // IANA, например "Europe/Moscow"
	Currency   string  `json:"currency"`
	ManagerIDs []int64 `json:"manager_ids"`
}

// Location часовой пояс салона; пустой timezone трактуется как UTC
func (s *Salon) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

// IsManager проверяет, что пользователь - менеджер салона
func (s *Salon) IsManager(userID int64) bool {
	for _, id := range s.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Service модель услуги салона
type Service struct {
	ID              int64    `json:"id"`
	SalonID         int64    `json:"salon_id"`
	Name            string   `json:"name"`
	DurationMinutes int      `json:"duration_minutes"`
	BufferMinutes   int      `json:"buffer_minutes"`
	Price           *float64 `json:"price,omitempty"`
	IsActive        bool     `json:"is_active"`
	MasterIDs       []int64  `json:"master_ids"` // мастера, оказывающие услугу
}

// ValidateTiming проверяет длительность и буфер услуги
// Буфер ограничен domain.MaxBufferMinutes: на эту границу опирается поиск соседних записей
func (s *Service) ValidateTiming() error {
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration_minutes=%d", ErrInvalidService, s.DurationMinutes)
	}
	if s.BufferMinutes < 0 || s.BufferMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: buffer_minutes=%d, allowed 0..%d", ErrInvalidService, s.BufferMinutes, domain.MaxBufferMinutes)
	}
	return nil
}

// OfferedBy проверяет, что мастер оказывает услугу
func (s *Service) OfferedBy(masterID int64) bool {
	for _, id := range s.MasterIDs {
		if id == masterID {
			return true
		}
	}
	return false
}

// Master модель мастера салона
type Master struct {
	ID       int64  `json:"id"`
	SalonID  int64  `json:"salon_id"`
	UserID   *int64 `json:"user_id,omitempty"` // пользователь портала мастера
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// ErrorResponse модель ошибки от SalonService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
