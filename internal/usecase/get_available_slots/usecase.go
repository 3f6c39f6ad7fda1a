package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/infra/cache/slotcache"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/occupancy"
)

// Options ограничения генерации
type Options struct {
	Concurrency  int           // параллельно обрабатываемых мастеров, 0 - без ограничения
	MaxRangeDays int           // максимальная длина диапазона дат
	Timeout      time.Duration // ограничение времени Execute и всего прохода Stream, 0 - без ограничения
}

// UseCase use case для получения свободных слотов
type UseCase struct {
	salonClient  SalonServiceClient
	policies     PolicyProvider
	resolver     WorkingHoursResolver
	aggregator   OccupancyAggregator
	cache        SlotCache
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
	opts         Options
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	salonClient SalonServiceClient,
	policies PolicyProvider,
	resolver WorkingHoursResolver,
	aggregator OccupancyAggregator,
	cache SlotCache,
	metrics Metrics,
	logger Logger,
	opts Options,
) *UseCase {
	return &UseCase{
		salonClient:  salonClient,
		policies:     policies,
		resolver:     resolver,
		aggregator:   aggregator,
		cache:        cache,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		opts:         opts,
	}
}

// plan данные, общие для всех дней запроса
type plan struct {
	req     *Request
	loc     *time.Location
	policy  *domain.BookingPolicy
	grid    grid
	masters []int64
	now     time.Time
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: salon=%d, service=%d, master=%v, date=%s, dateTo=%v",
		req.SalonID, req.ServiceID, req.MasterID, req.Date.Format(domain.DateFormat), req.DateTo)

	if uc.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.Timeout)
		defer cancel()
	}

	p, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		SalonID:         req.SalonID,
		ServiceID:       req.ServiceID,
		MasterID:        req.MasterID,
		DurationMinutes: int(p.grid.Duration / time.Minute),
		Days:            make([]DaySlots, 0),
	}

	total := 0
	for day, err := range uc.days(ctx, p) {
		if err != nil {
			uc.logger.Error("GetAvailableSlots: generation aborted for salon=%d: %v", req.SalonID, err)
			return nil, err
		}
		total += len(day.Slots)
		resp.Days = append(resp.Days, day)
	}

	uc.logger.Info("GetAvailableSlots: generated %d slots over %d days for salon=%d, service=%d",
		total, len(resp.Days), req.SalonID, req.ServiceID)
	return resp, nil
}

// Stream возвращает слоты по дням; каждый день считается только при запросе следующего элемента
// Ошибки подготовки (не найден салон, услуга, мастер) возвращаются сразу
// Timeout отсчитывается от вызова Stream и покрывает подготовку и проход по дням
func (uc *UseCase) Stream(ctx context.Context, req *Request) (iter.Seq2[DaySlots, error], error) {
	if uc.opts.Timeout <= 0 {
		p, err := uc.prepare(ctx, req)
		if err != nil {
			return nil, err
		}
		return uc.days(ctx, p), nil
	}

	deadline := time.Now().Add(uc.opts.Timeout)
	prepareCtx, cancel := context.WithDeadline(ctx, deadline)
	p, err := uc.prepare(prepareCtx, req)
	cancel()
	if err != nil {
		return nil, err
	}

	return func(yield func(DaySlots, error) bool) {
		iterCtx, cancel := context.WithDeadline(ctx, deadline)
		defer cancel()
		uc.days(iterCtx, p)(yield)
	}, nil
}

// days ленивая последовательность дней запроса
// Повторный проход пересчитывает дни заново с тем же now
func (uc *UseCase) days(ctx context.Context, p *plan) iter.Seq2[DaySlots, error] {
	return func(yield func(DaySlots, error) bool) {
		for _, day := range calendarDays(p.req, p.loc) {
			if err := ctx.Err(); err != nil {
				yield(DaySlots{}, err)
				return
			}

			slots, err := uc.daySlots(ctx, p, day)
			if err != nil {
				yield(DaySlots{}, err)
				return
			}

			if !yield(DaySlots{Date: day, Slots: slots}, nil) {
				return
			}
		}
	}
}

// daySlots слоты одного дня: из кэша или расчётом, затем окно записи
func (uc *UseCase) daySlots(ctx context.Context, p *plan, day time.Time) ([]domain.CandidateSlot, error) {
	if dayOutsideWindow(dayInterval(day), p.policy, p.now, p.loc) || len(p.masters) == 0 {
		return []domain.CandidateSlot{}, nil
	}

	key := slotcache.Key{
		SalonID:   p.req.SalonID,
		ServiceID: p.req.ServiceID,
		MasterID:  p.req.MasterID,
		Date:      day,
	}

	lookup, err := uc.cache.Get(ctx, key)
	switch {
	case err != nil:
		uc.metrics.IncSlotCache("error")
		uc.logger.Warn("GetAvailableSlots: slot cache read failed for salon=%d: %v", p.req.SalonID, err)
	case lookup.Hit:
		uc.metrics.IncSlotCache("hit")
		return applyWindow(lookup.Slots, p.policy, p.now, p.loc), nil
	default:
		uc.metrics.IncSlotCache("miss")
	}

	started := time.Now()
	slots, err := uc.generateDay(ctx, p, day)
	if err != nil {
		return nil, err
	}
	uc.metrics.ObserveSlotGeneration(time.Since(started))

	if err := uc.cache.Set(ctx, key, lookup.Version, slots); err != nil {
		uc.logger.Warn("GetAvailableSlots: slot cache write failed for salon=%d: %v", p.req.SalonID, err)
	}

	return applyWindow(slots, p.policy, p.now, p.loc), nil
}

// generateDay считает слоты всех мастеров дня параллельно
// Мастера не разделяют изменяемого состояния: каждый пишет в свою ячейку результата
func (uc *UseCase) generateDay(ctx context.Context, p *plan, day time.Time) ([]domain.CandidateSlot, error) {
	perMaster := make([][]domain.CandidateSlot, len(p.masters))

	g, gctx := errgroup.WithContext(ctx)
	if uc.opts.Concurrency > 0 {
		g.SetLimit(uc.opts.Concurrency)
	}

	for i, masterID := range p.masters {
		g.Go(func() error {
			working, err := uc.resolver.WorkingIntervals(gctx, p.req.SalonID, masterID, day, p.loc)
			if err != nil {
				return fmt.Errorf("%w: working hours of master=%d: %v", ErrInternal, masterID, err)
			}
			if len(working) == 0 {
				return nil
			}

			occupied, err := uc.aggregator.OccupiedIntervals(gctx, occupancy.Query{
				SalonID:            p.req.SalonID,
				MasterID:           masterID,
				Range:              span(working),
				SalonBufferMinutes: p.policy.BufferMinutes,
				Location:           p.loc,
			})
			if err != nil {
				return fmt.Errorf("%w: occupancy of master=%d: %v", ErrInternal, masterID, err)
			}

			slots, err := generateMasterSlots(masterID, working, occupied, p.grid)
			if err != nil {
				return fmt.Errorf("%w: slots of master=%d: %v", ErrInternal, masterID, err)
			}
			perMaster[i] = slots
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	result := make([]domain.CandidateSlot, 0)
	for _, slots := range perMaster {
		result = append(result, slots...)
	}
	domain.SortSlots(result)
	return result, nil
}

// prepare проверяет запрос и загружает салон, услугу, мастеров и политику
func (uc *UseCase) prepare(ctx context.Context, req *Request) (*plan, error) {
	if err := validateRequest(req, uc.opts.MaxRangeDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	salon, err := uc.salonClient.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonservice.ErrSalonNotFound) {
			uc.logger.Warn("GetAvailableSlots: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	loc, err := salon.Location()
	if err != nil {
		uc.logger.Error("GetAvailableSlots: invalid timezone %q of salon=%d: %v", salon.Timezone, req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid salon timezone: %v", ErrInternal, err)
	}

	service, err := uc.salonClient.GetService(ctx, req.SalonID, req.ServiceID)
	if err != nil {
		if errors.Is(err, salonservice.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceInactive
	}
	if err := service.ValidateTiming(); err != nil {
		uc.logger.Error("GetAvailableSlots: service id=%d rejected: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	masters, err := uc.mastersInScope(ctx, req, service)
	if err != nil {
		return nil, err
	}

	policy, err := uc.policies.Resolve(ctx, req.SalonID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get policy of salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get booking policy: %v", ErrInternal, err)
	}

	step := policy.SlotStepMinutes
	if step <= 0 {
		step = domain.DefaultSlotStepMinutes
	}

	return &plan{
		req:    req,
		loc:    loc,
		policy: policy,
		grid: grid{
			Duration: time.Duration(service.DurationMinutes) * time.Minute,
			Buffer:   time.Duration(policy.BufferMinutes+service.BufferMinutes) * time.Minute,
			Step:     time.Duration(step) * time.Minute,
		},
		masters: masters,
		now:     uc.timeProvider.Now(),
	}, nil
}

// mastersInScope активные мастера, оказывающие услугу, по возрастанию ID
func (uc *UseCase) mastersInScope(ctx context.Context, req *Request, service *salonservice.Service) ([]int64, error) {
	if req.MasterID != nil {
		master, err := uc.salonClient.GetMaster(ctx, req.SalonID, *req.MasterID)
		if err != nil {
			if errors.Is(err, salonservice.ErrMasterNotFound) {
				uc.logger.Warn("GetAvailableSlots: master id=%d not found", *req.MasterID)
				return nil, ErrMasterNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get master id=%d: %v", *req.MasterID, err)
			return nil, fmt.Errorf("%w: failed to get master: %v", ErrInternal, err)
		}
		if !service.OfferedBy(master.ID) {
			uc.logger.Warn("GetAvailableSlots: master id=%d does not provide service id=%d", master.ID, service.ID)
			return nil, ErrMasterNotQualified
		}
		if !master.IsActive {
			return []int64{}, nil
		}
		return []int64{master.ID}, nil
	}

	ids := slices.Clone(service.MasterIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	masters := make([]int64, 0, len(ids))
	for _, id := range ids {
		master, err := uc.salonClient.GetMaster(ctx, req.SalonID, id)
		if err != nil {
			if errors.Is(err, salonservice.ErrMasterNotFound) {
				uc.logger.Warn("GetAvailableSlots: master id=%d of service id=%d not found, skipping", id, service.ID)
				continue
			}
			return nil, fmt.Errorf("%w: failed to get master: %v", ErrInternal, err)
		}
		if master.IsActive {
			masters = append(masters, id)
		}
	}
	return masters, nil
}
