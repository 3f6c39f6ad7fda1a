package timeblocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	timeblockRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/timeblock"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/timeblocks/models"
)

const (
	// maxBlockDuration ограничение длительности повторяющегося блока
	maxBlockDuration = 24 * time.Hour

	// maxListRange ограничение диапазона выборки блоков
	maxListRange = 62 * 24 * time.Hour
)

// openEnd правая граница проверки повторяющегося блока: он действует бессрочно
var openEnd = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Service сервис блоков времени мастеров
type Service struct {
	blockRepo       TimeBlockRepository
	appointmentRepo AppointmentRepository
	access          AccessChecker
	slotCache       SlotCache
	txManager       TransactionManager
	logger          Logger
}

// NewService создает новый экземпляр сервиса блоков времени
func NewService(
	blockRepo TimeBlockRepository,
	appointmentRepo AppointmentRepository,
	access AccessChecker,
	slotCache SlotCache,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		blockRepo:       blockRepo,
		appointmentRepo: appointmentRepo,
		access:          access,
		slotCache:       slotCache,
		txManager:       txManager,
		logger:          logger,
	}
}

// Create создает блок времени
// Блок не должен пересекать активную запись мастера и блоки другого типа.
// Повторяющийся блок проверяется по всем вхождениям начиная с его даты.
// Проверка и вставка выполняются под той же блокировкой мастера, что и запись клиента.
func (s *Service) Create(ctx context.Context, req *models.CreateTimeBlockRequest) (*models.TimeBlockResponse, error) {
	s.logger.Info("CreateTimeBlock: salon=%d, master=%d, user=%d, type=%s, %s - %s, recurring=%t",
		req.SalonID, req.MasterID, req.UserID, req.Type,
		req.StartTime.Format(time.RFC3339), req.EndTime.Format(time.RFC3339), req.Recurring)

	block, err := toDomainBlock(req)
	if err != nil {
		s.logger.Warn("CreateTimeBlock: validation failed: %v", err)
		return nil, err
	}

	salon, _, err := s.access.RequireScheduleEditor(ctx, req.SalonID, req.MasterID, req.UserID)
	if err != nil {
		return nil, err
	}

	loc, err := salon.Location()
	if err != nil {
		s.logger.Error("CreateTimeBlock: invalid timezone %q of salon=%d: %v", salon.Timezone, req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid salon timezone: %v", ErrInternal, err)
	}

	if block.Recurring && block.DayOfWeek == nil {
		weekday := domain.ISOWeekday(block.StartTime.In(loc))
		block.DayOfWeek = &weekday
	}

	check := checkRange(block)

	var created *domain.TimeBlock
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.appointmentRepo.LockMaster(txCtx, req.SalonID, req.MasterID); err != nil {
			return fmt.Errorf("%w: lock master: %v", ErrInternal, err)
		}

		appointments, err := s.appointmentRepo.GetOccupying(txCtx, domain.OccupancyFilter{
			SalonID:  req.SalonID,
			MasterID: req.MasterID,
			From:     check.Start,
			To:       check.End,
		})
		if err != nil {
			return fmt.Errorf("%w: get appointments: %v", ErrInternal, err)
		}
		for _, appt := range appointments {
			if appt.IsActive() && len(block.OccurrencesIn(appt.Interval(), loc)) > 0 {
				s.logger.Warn("CreateTimeBlock: overlaps appointment id=%d at %s", appt.ID, appt.StartTime.Format(time.RFC3339))
				return ErrOverlapsAppointment
			}
		}

		existing, err := s.blockRepo.GetForMaster(txCtx, req.SalonID, req.MasterID, check)
		if err != nil {
			return fmt.Errorf("%w: get time blocks: %v", ErrInternal, err)
		}
		for _, other := range existing {
			if other.Type == block.Type {
				continue
			}
			if blocksCollide(block, other, loc) {
				s.logger.Warn("CreateTimeBlock: overlaps block id=%d of type %s", other.ID, other.Type)
				return ErrOverlapsBlock
			}
		}

		created, err = s.blockRepo.Create(txCtx, block)
		if err != nil {
			return fmt.Errorf("%w: create time block: %v", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		if !errors.Is(err, domain.ErrBookingConflict) {
			s.logger.Error("CreateTimeBlock: failed for master=%d: %v", req.MasterID, err)
		}
		return nil, err
	}

	s.invalidate(ctx, created, loc)

	s.logger.Info("CreateTimeBlock: successfully created time block id=%d", created.ID)
	return models.FromDomainTimeBlock(created), nil
}

// List получает блоки мастера, пересекающие диапазон (повторяющиеся - по определению)
func (s *Service) List(ctx context.Context, salonID, masterID int64, from, to time.Time) (*models.TimeBlockListResponse, error) {
	s.logger.Info("ListTimeBlocks: salon=%d, master=%d, %s - %s",
		salonID, masterID, from.Format(time.RFC3339), to.Format(time.RFC3339))

	rng, err := domain.NewTimeInterval(from, to)
	if err != nil || rng.Duration() > maxListRange {
		return nil, fmt.Errorf("%w: invalid range", ErrInvalidInput)
	}

	if _, err := s.access.Master(ctx, salonID, masterID); err != nil {
		return nil, err
	}

	blocks, err := s.blockRepo.GetForMaster(ctx, salonID, masterID, rng)
	if err != nil {
		s.logger.Error("ListTimeBlocks: repository error for master=%d: %v", masterID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTimeBlocks(blocks), nil
}

// Delete удаляет блок времени
func (s *Service) Delete(ctx context.Context, salonID, masterID, blockID, userID int64) error {
	s.logger.Info("DeleteTimeBlock: salon=%d, master=%d, block=%d, user=%d", salonID, masterID, blockID, userID)

	salon, _, err := s.access.RequireScheduleEditor(ctx, salonID, masterID, userID)
	if err != nil {
		return err
	}

	block, err := s.blockRepo.GetByID(ctx, blockID)
	if err != nil {
		if errors.Is(err, timeblockRepo.ErrTimeBlockNotFound) {
			return ErrTimeBlockNotFound
		}
		s.logger.Error("DeleteTimeBlock: repository error for block=%d: %v", blockID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	if block.SalonID != salonID || block.MasterID != masterID {
		s.logger.Warn("DeleteTimeBlock: block=%d does not belong to master=%d", blockID, masterID)
		return ErrTimeBlockNotFound
	}

	if err := s.blockRepo.Delete(ctx, blockID); err != nil {
		if errors.Is(err, timeblockRepo.ErrTimeBlockNotFound) {
			return ErrTimeBlockNotFound
		}
		s.logger.Error("DeleteTimeBlock: repository error for block=%d: %v", blockID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	loc, err := salon.Location()
	if err != nil {
		loc = time.UTC
	}
	s.invalidate(ctx, block, loc)

	return nil
}

// invalidate сбрасывает кэш слотов по датам блока
func (s *Service) invalidate(ctx context.Context, block *domain.TimeBlock, loc *time.Location) {
	var err error
	if block.Recurring {
		err = s.slotCache.InvalidateSalon(ctx, block.SalonID)
	} else {
		start := block.StartTime.In(loc)
		first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
		for d := first; d.Before(block.EndTime); d = d.AddDate(0, 0, 1) {
			if err = s.slotCache.Invalidate(ctx, block.SalonID, d); err != nil {
				break
			}
		}
	}
	if err != nil {
		s.logger.Warn("TimeBlocks: failed to invalidate slot cache for salon=%d: %v", block.SalonID, err)
	}
}

// checkRange диапазон выборки записей и блоков, с которыми сверяется новый блок
func checkRange(block *domain.TimeBlock) domain.TimeInterval {
	if !block.Recurring {
		return block.Interval()
	}
	return domain.TimeInterval{Start: block.StartTime, End: openEnd}
}

// blocksCollide пересекается ли хотя бы одно вхождение a с вхождением b
// Два еженедельных блока повторяют взаимное расположение каждую неделю,
// поэтому их достаточно сравнить на отрезке в 8 дней после начала обоих
func blocksCollide(a, b *domain.TimeBlock, loc *time.Location) bool {
	switch {
	case !b.Recurring:
		return len(a.OccurrencesIn(b.Interval(), loc)) > 0
	case !a.Recurring:
		return len(b.OccurrencesIn(a.Interval(), loc)) > 0
	}

	start := a.StartTime
	if b.StartTime.After(start) {
		start = b.StartTime
	}
	window := domain.TimeInterval{Start: start, End: start.AddDate(0, 0, 8)}
	for _, occurrence := range a.OccurrencesIn(window, loc) {
		if len(b.OccurrencesIn(occurrence, loc)) > 0 {
			return true
		}
	}
	return false
}

// toDomainBlock валидирует запрос и конвертирует его в domain модель
func toDomainBlock(req *models.CreateTimeBlockRequest) (*domain.TimeBlock, error) {
	blockType := domain.TimeBlockType(req.Type)
	if !blockType.IsValid() {
		return nil, fmt.Errorf("%w: unknown block type %q", ErrInvalidInput, req.Type)
	}

	interval, err := domain.NewTimeInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if req.Title != nil && len(*req.Title) > domain.MaxTimeBlockTitleLength {
		return nil, fmt.Errorf("%w: title is too long", ErrInvalidInput)
	}

	if req.Recurring {
		if interval.Duration() > maxBlockDuration {
			return nil, fmt.Errorf("%w: recurring block must not exceed 24 hours", ErrInvalidInput)
		}
		if req.DayOfWeek != nil && (*req.DayOfWeek < 1 || *req.DayOfWeek > 7) {
			return nil, fmt.Errorf("%w: dayOfWeek must be in 1..7", ErrInvalidInput)
		}
	} else if req.DayOfWeek != nil {
		return nil, fmt.Errorf("%w: dayOfWeek is only allowed for recurring blocks", ErrInvalidInput)
	}

	return &domain.TimeBlock{
		SalonID:   req.SalonID,
		MasterID:  req.MasterID,
		Type:      blockType,
		Title:     req.Title,
		StartTime: interval.Start,
		EndTime:   interval.End,
		Recurring: req.Recurring,
		DayOfWeek: req.DayOfWeek,
	}, nil
}
