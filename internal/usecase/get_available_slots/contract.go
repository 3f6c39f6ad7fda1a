package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/infra/cache/slotcache"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/occupancy"
)

// SalonServiceClient интерфейс клиента для SalonService
type SalonServiceClient interface {
	GetSalon(ctx context.Context, salonID int64) (*salonservice.Salon, error)
	GetService(ctx context.Context, salonID, serviceID int64) (*salonservice.Service, error)
	GetMaster(ctx context.Context, salonID, masterID int64) (*salonservice.Master, error)
}

// PolicyProvider действующая политика бронирования салона
type PolicyProvider interface {
	Resolve(ctx context.Context, salonID int64) (*domain.BookingPolicy, error)
}

// WorkingHoursResolver рабочие интервалы мастера на дату
type WorkingHoursResolver interface {
	WorkingIntervals(ctx context.Context, salonID, masterID int64, date time.Time, loc *time.Location) ([]domain.TimeInterval, error)
}

// OccupancyAggregator занятые интервалы мастера
type OccupancyAggregator interface {
	OccupiedIntervals(ctx context.Context, q occupancy.Query) ([]domain.TimeInterval, error)
}

// SlotCache кэш рассчитанных слотов дня
type SlotCache interface {
	Get(ctx context.Context, key slotcache.Key) (slotcache.Lookup, error)
	Set(ctx context.Context, key slotcache.Key, version string, slots []domain.CandidateSlot) error
}

// Metrics метрики генерации слотов
type Metrics interface {
	ObserveSlotGeneration(d time.Duration)
	IncSlotCache(result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
