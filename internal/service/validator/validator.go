package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/occupancy"
)

// Candidate интервал, который проверяется перед фиксацией записи
type Candidate struct {
	SalonID  int64
	MasterID int64
	Interval domain.TimeInterval
	// ServiceBufferMinutes буфер услуги; буфер салона берётся из политики
	ServiceBufferMinutes int
	// ExcludeAppointmentID переносимая запись не конфликтует сама с собой
	ExcludeAppointmentID *int64
}

// Validator повторяет проверки генератора слотов для одного интервала.
// Вызывается внутри транзакции фиксации, после блокировки мастера
type Validator struct {
	resolver   WorkingHoursResolver
	aggregator OccupancyAggregator
}

// New создает новый экземпляр валидатора
func New(resolver WorkingHoursResolver, aggregator OccupancyAggregator) *Validator {
	return &Validator{
		resolver:   resolver,
		aggregator: aggregator,
	}
}

// Check проверяет окно записи, рабочие часы и занятость
// Нарушение политики - ErrPolicyViolation, пересечение - ErrBookingConflict
func (v *Validator) Check(
	ctx context.Context,
	c Candidate,
	policy *domain.BookingPolicy,
	loc *time.Location,
	now time.Time,
) error {
	if err := c.Interval.Validate(); err != nil {
		return err
	}

	if !policy.AllowsStart(c.Interval.Start, now, loc) {
		return fmt.Errorf("%w: start=%s", ErrOutsideBookingWindow, c.Interval.Start.Format(time.RFC3339))
	}

	working, err := v.containingInterval(ctx, c, loc)
	if err != nil {
		return err
	}

	buffer := time.Duration(policy.BufferMinutes+c.ServiceBufferMinutes) * time.Minute
	blocked := domain.BufferedWithin(c.Interval, working, buffer)

	occupied, err := v.aggregator.OccupiedIntervals(ctx, occupancy.Query{
		SalonID:              c.SalonID,
		MasterID:             c.MasterID,
		Range:                blocked,
		SalonBufferMinutes:   policy.BufferMinutes,
		Location:             loc,
		ExcludeAppointmentID: c.ExcludeAppointmentID,
	})
	if err != nil {
		return fmt.Errorf("%w: Check - occupancy: %v", ErrInternal, err)
	}

	for _, busy := range occupied {
		if domain.Overlaps(busy, blocked) {
			return fmt.Errorf("%w: %s overlaps %s", ErrSlotTaken, blocked, busy)
		}
	}

	return nil
}

// containingInterval рабочий интервал дня начала, целиком содержащий кандидата
func (v *Validator) containingInterval(ctx context.Context, c Candidate, loc *time.Location) (domain.TimeInterval, error) {
	local := c.Interval.Start.In(loc)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	intervals, err := v.resolver.WorkingIntervals(ctx, c.SalonID, c.MasterID, date, loc)
	if err != nil {
		return domain.TimeInterval{}, fmt.Errorf("%w: Check - working hours: %v", ErrInternal, err)
	}

	for _, working := range intervals {
		if working.Contains(c.Interval) {
			return working, nil
		}
	}

	return domain.TimeInterval{}, fmt.Errorf("%w: %s", ErrOutsideWorkingHours, c.Interval)
}
