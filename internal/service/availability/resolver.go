package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// Resolver вычисляет рабочие интервалы мастера на дату
// Исключение на дату полностью заменяет недельное правило.
// Модель допускает не более одного рабочего интервала в день (без разрывов смены).
type Resolver struct {
	repo   RuleRepository
	access AccessChecker
	logger Logger
}

// NewResolver создает новый экземпляр резолвера расписания
func NewResolver(repo RuleRepository, access AccessChecker, logger Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		access: access,
		logger: logger,
	}
}

// Resolve возвращает рабочие интервалы мастера на календарную дату в часовом поясе loc
// Неизвестный мастер - ErrMasterNotFound; выходной - пустой список
func (r *Resolver) Resolve(ctx context.Context, salonID, masterID int64, date time.Time, loc *time.Location) ([]domain.TimeInterval, error) {
	if _, err := r.access.Master(ctx, salonID, masterID); err != nil {
		if errors.Is(err, access.ErrMasterNotFound) {
			return nil, ErrMasterNotFound
		}
		return nil, fmt.Errorf("%w: Resolve - get master: %v", ErrInternal, err)
	}

	return r.WorkingIntervals(ctx, salonID, masterID, date, loc)
}

// WorkingIntervals то же, что Resolve, но без проверки существования мастера
// Используется, когда мастер уже проверен вызывающей стороной
func (r *Resolver) WorkingIntervals(ctx context.Context, salonID, masterID int64, date time.Time, loc *time.Location) ([]domain.TimeInterval, error) {
	override, err := r.repo.GetOverride(ctx, salonID, masterID, date)
	if err != nil && !errors.Is(err, availabilityRepo.ErrOverrideNotFound) {
		r.logger.Error("Resolve: failed to get override master=%d date=%s: %v",
			masterID, date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: Resolve - get override: %v", ErrInternal, err)
	}

	if override != nil {
		if !override.IsWorking || override.StartTime == nil || override.EndTime == nil {
			return []domain.TimeInterval{}, nil
		}
		return projectDay(date, *override.StartTime, *override.EndTime, loc)
	}

	rule, err := r.repo.GetRule(ctx, salonID, masterID, domain.ISOWeekday(date))
	if errors.Is(err, availabilityRepo.ErrRuleNotFound) {
		return []domain.TimeInterval{}, nil
	}
	if err != nil {
		r.logger.Error("Resolve: failed to get weekly rule master=%d date=%s: %v",
			masterID, date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: Resolve - get rule: %v", ErrInternal, err)
	}

	if !rule.IsWorking {
		return []domain.TimeInterval{}, nil
	}
	return projectDay(date, rule.StartTime, rule.EndTime, loc)
}

// projectDay переводит локальные часы работы в абсолютные моменты на дату
func projectDay(date time.Time, start, end types.TimeString, loc *time.Location) ([]domain.TimeInterval, error) {
	working, err := domain.WorkingInterval(date, start, end, loc)
	if err != nil {
		return nil, err
	}
	return []domain.TimeInterval{working}, nil
}
