package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
)

// RuleRepository интерфейс репозитория недельных правил и исключений
type RuleRepository interface {
	GetRule(ctx context.Context, salonID, masterID int64, dayOfWeek int) (*domain.WeeklyAvailabilityRule, error)
	GetRules(ctx context.Context, salonID, masterID int64) ([]*domain.WeeklyAvailabilityRule, error)
	UpsertRules(ctx context.Context, rules []*domain.WeeklyAvailabilityRule) error
	GetOverride(ctx context.Context, salonID, masterID int64, date time.Time) (*domain.AvailabilityOverride, error)
	GetOverrides(ctx context.Context, salonID, masterID int64, from, to time.Time) ([]*domain.AvailabilityOverride, error)
	CreateOverride(ctx context.Context, override *domain.AvailabilityOverride) (*domain.AvailabilityOverride, error)
	DeleteOverride(ctx context.Context, salonID, masterID int64, date time.Time) error
}

// AccessChecker проверка прав пользователя в салоне
type AccessChecker interface {
	Master(ctx context.Context, salonID, masterID int64) (*salonservice.Master, error)
	Salon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
	RequireScheduleEditor(ctx context.Context, salonID, masterID, userID int64) (*salonservice.Salon, *salonservice.Master, error)
}

// SlotCache инвалидация кэша слотов
type SlotCache interface {
	Invalidate(ctx context.Context, salonID int64, date time.Time) error
	InvalidateSalon(ctx context.Context, salonID int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
