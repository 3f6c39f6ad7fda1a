package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/availability"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/availability/models"
	"github.com/m04kA/SMC-SalonBookingService/pkg/types"
)

// maxOverridesRange ограничение диапазона выборки исключений
const maxOverridesRange = 366 * 24 * time.Hour

// Service сервис управления расписанием мастеров
type Service struct {
	repo      RuleRepository
	resolver  *Resolver
	access    AccessChecker
	slotCache SlotCache
	logger    Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	repo RuleRepository,
	resolver *Resolver,
	access AccessChecker,
	slotCache SlotCache,
	logger Logger,
) *Service {
	return &Service{
		repo:      repo,
		resolver:  resolver,
		access:    access,
		slotCache: slotCache,
		logger:    logger,
	}
}

// GetRules получает недельное расписание мастера
func (s *Service) GetRules(ctx context.Context, salonID, masterID int64) (*models.RulesResponse, error) {
	s.logger.Info("GetRules: salon=%d, master=%d", salonID, masterID)

	if _, err := s.access.Master(ctx, salonID, masterID); err != nil {
		return nil, err
	}

	rules, err := s.repo.GetRules(ctx, salonID, masterID)
	if err != nil {
		s.logger.Error("GetRules: repository error for master=%d: %v", masterID, err)
		return nil, fmt.Errorf("%w: GetRules - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRules(masterID, rules), nil
}

// SetRules перезаписывает недельные правила мастера (upsert по дням недели)
// Доступно менеджеру салона и самому мастеру
func (s *Service) SetRules(ctx context.Context, req *models.SetRulesRequest) (*models.RulesResponse, error) {
	s.logger.Info("SetRules: salon=%d, master=%d, user=%d, rules=%d", req.SalonID, req.MasterID, req.UserID, len(req.Rules))

	rules, err := toDomainRules(req)
	if err != nil {
		s.logger.Warn("SetRules: validation failed: %v", err)
		return nil, err
	}

	if _, _, err := s.access.RequireScheduleEditor(ctx, req.SalonID, req.MasterID, req.UserID); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertRules(ctx, rules); err != nil {
		s.logger.Error("SetRules: repository error for master=%d: %v", req.MasterID, err)
		return nil, fmt.Errorf("%w: SetRules - repository error: %v", ErrInternal, err)
	}

	// Правила влияют на все даты салона
	if err := s.slotCache.InvalidateSalon(ctx, req.SalonID); err != nil {
		s.logger.Warn("SetRules: failed to invalidate slot cache for salon=%d: %v", req.SalonID, err)
	}

	// Не учитываем уже созданные записи: правило не отменяет их автоматически
	s.logger.Info("SetRules: successfully updated %d rules for master=%d", len(rules), req.MasterID)
	return s.GetRules(ctx, req.SalonID, req.MasterID)
}

// GetOverrides получает исключения мастера в диапазоне дат
func (s *Service) GetOverrides(ctx context.Context, salonID, masterID int64, from, to time.Time) (*models.OverrideListResponse, error) {
	s.logger.Info("GetOverrides: salon=%d, master=%d, period=%s to %s",
		salonID, masterID, from.Format(domain.DateFormat), to.Format(domain.DateFormat))

	if to.Before(from) || to.Sub(from) > maxOverridesRange {
		return nil, fmt.Errorf("%w: invalid date range", ErrInvalidInput)
	}

	if _, err := s.access.Master(ctx, salonID, masterID); err != nil {
		return nil, err
	}

	overrides, err := s.repo.GetOverrides(ctx, salonID, masterID, from, to)
	if err != nil {
		s.logger.Error("GetOverrides: repository error for master=%d: %v", masterID, err)
		return nil, fmt.Errorf("%w: GetOverrides - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainOverrides(overrides), nil
}

// CreateOverride создает исключение на дату; одно на дату
func (s *Service) CreateOverride(ctx context.Context, req *models.CreateOverrideRequest) (*models.OverrideResponse, error) {
	s.logger.Info("CreateOverride: salon=%d, master=%d, user=%d, date=%s, working=%t",
		req.SalonID, req.MasterID, req.UserID, req.Date.Format(domain.DateFormat), req.IsWorking)

	override, err := toDomainOverride(req)
	if err != nil {
		s.logger.Warn("CreateOverride: validation failed: %v", err)
		return nil, err
	}

	if _, _, err := s.access.RequireScheduleEditor(ctx, req.SalonID, req.MasterID, req.UserID); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateOverride(ctx, override)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrDuplicateOverride) {
			s.logger.Warn("CreateOverride: override for master=%d date=%s already exists",
				req.MasterID, req.Date.Format(domain.DateFormat))
			return nil, ErrOverrideExists
		}
		s.logger.Error("CreateOverride: repository error for master=%d: %v", req.MasterID, err)
		return nil, fmt.Errorf("%w: CreateOverride - repository error: %v", ErrInternal, err)
	}

	if err := s.slotCache.Invalidate(ctx, req.SalonID, req.Date); err != nil {
		s.logger.Warn("CreateOverride: failed to invalidate slot cache: %v", err)
	}

	s.logger.Info("CreateOverride: successfully created override id=%d", created.ID)
	return models.FromDomainOverride(created), nil
}

// DeleteOverride удаляет исключение; на дату снова действует недельное правило
func (s *Service) DeleteOverride(ctx context.Context, salonID, masterID, userID int64, date time.Time) error {
	s.logger.Info("DeleteOverride: salon=%d, master=%d, user=%d, date=%s",
		salonID, masterID, userID, date.Format(domain.DateFormat))

	if _, _, err := s.access.RequireScheduleEditor(ctx, salonID, masterID, userID); err != nil {
		return err
	}

	if err := s.repo.DeleteOverride(ctx, salonID, masterID, date); err != nil {
		if errors.Is(err, availabilityRepo.ErrOverrideNotFound) {
			return ErrOverrideNotFound
		}
		s.logger.Error("DeleteOverride: repository error for master=%d: %v", masterID, err)
		return fmt.Errorf("%w: DeleteOverride - repository error: %v", ErrInternal, err)
	}

	if err := s.slotCache.Invalidate(ctx, salonID, date); err != nil {
		s.logger.Warn("DeleteOverride: failed to invalidate slot cache: %v", err)
	}

	return nil
}

// GetWorkingHours возвращает рабочие интервалы мастера на дату в часовом поясе салона
func (s *Service) GetWorkingHours(ctx context.Context, salonID, masterID int64, date time.Time) (*models.WorkingHoursResponse, error) {
	salon, err := s.access.Salon(ctx, salonID)
	if err != nil {
		return nil, err
	}

	loc, err := salon.Location()
	if err != nil {
		s.logger.Error("GetWorkingHours: invalid timezone %q of salon=%d: %v", salon.Timezone, salonID, err)
		return nil, fmt.Errorf("%w: invalid salon timezone: %v", ErrInternal, err)
	}

	intervals, err := s.resolver.Resolve(ctx, salonID, masterID, date, loc)
	if err != nil {
		return nil, err
	}

	return models.FromIntervals(masterID, date, loc.String(), intervals), nil
}

// toDomainRules валидирует и конвертирует правила
func toDomainRules(req *models.SetRulesRequest) ([]*domain.WeeklyAvailabilityRule, error) {
	if len(req.Rules) == 0 || len(req.Rules) > 7 {
		return nil, fmt.Errorf("%w: from 1 to 7 rules expected", ErrInvalidInput)
	}

	seen := make(map[int]bool, len(req.Rules))
	rules := make([]*domain.WeeklyAvailabilityRule, 0, len(req.Rules))

	for _, in := range req.Rules {
		if in.DayOfWeek < 1 || in.DayOfWeek > 7 {
			return nil, fmt.Errorf("%w: dayOfWeek must be in 1..7", ErrInvalidInput)
		}
		if seen[in.DayOfWeek] {
			return nil, fmt.Errorf("%w: duplicate dayOfWeek %d", ErrInvalidInput, in.DayOfWeek)
		}
		seen[in.DayOfWeek] = true

		start, end, err := parseHours(in.StartTime, in.EndTime, in.IsWorking)
		if err != nil {
			return nil, err
		}

		rules = append(rules, &domain.WeeklyAvailabilityRule{
			SalonID:   req.SalonID,
			MasterID:  req.MasterID,
			DayOfWeek: in.DayOfWeek,
			StartTime: start,
			EndTime:   end,
			IsWorking: in.IsWorking,
		})
	}

	return rules, nil
}

// toDomainOverride валидирует и конвертирует исключение
func toDomainOverride(req *models.CreateOverrideRequest) (*domain.AvailabilityOverride, error) {
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxOverrideReasonLength {
		return nil, fmt.Errorf("%w: reason is too long", ErrInvalidInput)
	}

	override := &domain.AvailabilityOverride{
		SalonID:   req.SalonID,
		MasterID:  req.MasterID,
		Date:      req.Date,
		IsWorking: req.IsWorking,
		Reason:    req.Reason,
	}

	if !req.IsWorking {
		return override, nil
	}

	if req.StartTime == nil || req.EndTime == nil {
		return nil, fmt.Errorf("%w: startTime and endTime are required for a working day", ErrInvalidInput)
	}

	start, end, err := parseHours(*req.StartTime, *req.EndTime, true)
	if err != nil {
		return nil, err
	}
	override.StartTime = &start
	override.EndTime = &end

	return override, nil
}

// parseHours разбирает часы работы; для нерабочего дня пустые значения допустимы
func parseHours(startRaw, endRaw string, working bool) (types.TimeString, types.TimeString, error) {
	if !working && startRaw == "" && endRaw == "" {
		return types.TimeString("00:00"), types.TimeString("00:00"), nil
	}

	start, err := types.NewTimeStringFromString(startRaw)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid startTime: %v", ErrInvalidInput, err)
	}
	end, err := types.NewTimeStringFromString(endRaw)
	if err != nil {
		return "", "", fmt.Errorf("%w: invalid endTime: %v", ErrInvalidInput, err)
	}

	if working && !start.IsBefore(end) {
		return "", "", fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	return start, end, nil
}
