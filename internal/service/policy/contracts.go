package policy

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
)

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	GetBySalon(ctx context.Context, salonID int64) (*domain.BookingPolicy, error)
	Upsert(ctx context.Context, policy *domain.BookingPolicy) (*domain.BookingPolicy, error)
}

// AccessChecker проверка прав пользователя в салоне
type AccessChecker interface {
	Salon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
	RequireManager(ctx context.Context, salonID, userID int64) (*salonservice.Salon, error)
}

// SlotCache инвалидация кэша слотов
type SlotCache interface {
	InvalidateSalon(ctx context.Context, salonID int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
