package update_appointment

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/validator"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

// UseCase use case для изменения записи: перенос, смена статуса, комментарий
type UseCase struct {
	appointmentRepo AppointmentRepository
	salonClient     SalonServiceClient
	policies        PolicyProvider
	validator       BookingValidator
	events          EventRecorder
	slotCache       SlotCache
	txManager       TransactionManager
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	salonClient SalonServiceClient,
	policies PolicyProvider,
	validator BookingValidator,
	events EventRecorder,
	slotCache SlotCache,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		salonClient:     salonClient,
		policies:        policies,
		validator:       validator,
		events:          events,
		slotCache:       slotCache,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// change итог применения запроса к записи
type change struct {
	previous    domain.Appointment
	rescheduled bool
	statusMoved bool
	notesOnly   bool
}

// Execute выполняет use case изменения записи
// Перенос проверяется так же, как новая запись, без учёта самой переносимой записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.AppointmentResponse, error) {
	uc.logger.Info("UpdateAppointment: salon=%d, appointment=%d, user=%d, start=%v, master=%v, status=%v",
		req.SalonID, req.AppointmentID, req.UserID, req.StartTime, req.MasterID, req.Status)

	// 1. Валидация входных данных
	newStatus, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("UpdateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Салон и текущее состояние записи
	salon, err := uc.salonClient.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonservice.ErrSalonNotFound) {
			uc.logger.Warn("UpdateAppointment: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("UpdateAppointment: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	loc, err := salon.Location()
	if err != nil {
		uc.logger.Error("UpdateAppointment: invalid timezone %q of salon=%d: %v", salon.Timezone, req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid salon timezone: %v", ErrInternal, err)
	}

	current, err := uc.load(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Права: менеджер меняет всё, мастер записи - только статус и комментарий
	if err := uc.authorize(ctx, req, salon, current); err != nil {
		return nil, err
	}

	// 4. Новый мастер должен работать и оказывать услугу
	if req.MasterID != nil && *req.MasterID != current.MasterID {
		if err := uc.checkMaster(ctx, req.SalonID, *req.MasterID, current.ServiceID); err != nil {
			return nil, err
		}
	}

	policy, err := uc.policies.Resolve(ctx, req.SalonID)
	if err != nil {
		uc.logger.Error("UpdateAppointment: failed to get policy of salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get booking policy: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	var (
		result *domain.Appointment
		ch     change
	)

	// 5. Изменение в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// Блокировки мастеров берутся по возрастанию ID
		masters := []int64{current.MasterID}
		if req.MasterID != nil && *req.MasterID != current.MasterID {
			masters = append(masters, *req.MasterID)
		}
		slices.Sort(masters)
		for _, masterID := range masters {
			if err := uc.appointmentRepo.LockMaster(txCtx, req.SalonID, masterID); err != nil {
				return fmt.Errorf("%w: failed to lock master: %v", ErrInternal, err)
			}
		}

		appointment, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		// Параллельный перенос мог сменить мастера после чтения вне транзакции
		if !slices.Contains(masters, appointment.MasterID) {
			uc.logger.Warn("UpdateAppointment: appointment id=%d moved to master=%d concurrently, locking it too",
				appointment.ID, appointment.MasterID)
			if err := uc.appointmentRepo.LockMaster(txCtx, req.SalonID, appointment.MasterID); err != nil {
				return fmt.Errorf("%w: failed to lock master: %v", ErrInternal, err)
			}
		}

		ch, err = uc.apply(appointment, req, newStatus, now)
		if err != nil {
			return err
		}

		if ch.rescheduled {
			candidate := validator.Candidate{
				SalonID:              appointment.SalonID,
				MasterID:             appointment.MasterID,
				Interval:             appointment.Interval(),
				ServiceBufferMinutes: appointment.ServiceBufferMinutes,
				ExcludeAppointmentID: &appointment.ID,
			}
			if err := uc.validator.Check(txCtx, candidate, policy, loc, now); err != nil {
				return err
			}
		}

		if err := uc.appointmentRepo.Update(txCtx, appointment); err != nil {
			return err
		}

		if err := uc.record(txCtx, appointment, ch, req, now); err != nil {
			return err
		}

		result = appointment
		return nil
	})

	if err != nil {
		return nil, uc.mapCommitError(err)
	}

	if ch.statusMoved {
		uc.metrics.IncTransition(string(result.Status))
	}
	if ch.rescheduled || ch.statusMoved {
		uc.invalidate(ctx, result.SalonID, ch.previous.StartTime, loc)
		uc.invalidate(ctx, result.SalonID, result.StartTime, loc)
	}

	uc.logger.Info("UpdateAppointment: successfully updated appointment id=%d, status=%s", result.ID, result.Status)
	return models.FromDomainAppointment(result), nil
}

// apply применяет запрос к записи в памяти
func (uc *UseCase) apply(
	appointment *domain.Appointment,
	req *Request,
	newStatus *domain.AppointmentStatus,
	now time.Time,
) (change, error) {
	ch := change{previous: *appointment}

	startChanged := req.StartTime != nil && !req.StartTime.Equal(appointment.StartTime)
	masterChanged := req.MasterID != nil && *req.MasterID != appointment.MasterID

	if startChanged || masterChanged {
		if !appointment.CanBeRescheduled() {
			return ch, fmt.Errorf("%w: status=%s", ErrNotReschedulable, appointment.Status)
		}
		if startChanged {
			appointment.StartTime = req.StartTime.UTC()
			appointment.EndTime = appointment.StartTime.Add(time.Duration(appointment.DurationMinutes) * time.Minute)
		}
		if masterChanged {
			appointment.MasterID = *req.MasterID
		}
		ch.rescheduled = true
	}

	if newStatus != nil && *newStatus != appointment.Status {
		if err := appointment.Status.ValidateTransition(*newStatus); err != nil {
			return ch, err
		}
		appointment.Status = *newStatus
		if *newStatus == domain.StatusCancelled {
			cancelledAt := now.UTC()
			appointment.CancelledAt = &cancelledAt
		}
		ch.statusMoved = true
	}

	if req.Notes != nil {
		appointment.Notes = req.Notes
		ch.notesOnly = !ch.rescheduled && !ch.statusMoved
	}

	return ch, nil
}

// record пишет историю и события изменения
func (uc *UseCase) record(ctx context.Context, appointment *domain.Appointment, ch change, req *Request, now time.Time) error {
	entries := make([]*domain.AppointmentHistory, 0, 2)
	events := make([]domain.EventType, 0, 2)

	if ch.rescheduled {
		entries = append(entries, &domain.AppointmentHistory{
			AppointmentID: appointment.ID,
			Action:        domain.ActionRescheduled,
			OldStartTime:  &ch.previous.StartTime,
			NewStartTime:  &appointment.StartTime,
			OldMasterID:   &ch.previous.MasterID,
			NewMasterID:   &appointment.MasterID,
			ChangedBy:     req.UserID,
		})
		events = append(events, domain.EventAppointmentRescheduled)
	}

	if ch.statusMoved {
		action := domain.ActionStatusChanged
		eventType := domain.EventAppointmentStatusChanged
		if appointment.Status == domain.StatusCancelled {
			action = domain.ActionCancelled
			eventType = domain.EventAppointmentCancelled
		}
		entries = append(entries, &domain.AppointmentHistory{
			AppointmentID: appointment.ID,
			Action:        action,
			OldStatus:     &ch.previous.Status,
			NewStatus:     &appointment.Status,
			ChangedBy:     req.UserID,
		})
		events = append(events, eventType)
	}

	if ch.notesOnly {
		entries = append(entries, &domain.AppointmentHistory{
			AppointmentID: appointment.ID,
			Action:        domain.ActionUpdated,
			ChangedBy:     req.UserID,
			Notes:         req.Notes,
		})
	}

	for _, h := range entries {
		if err := uc.appointmentRepo.AddHistory(ctx, h); err != nil {
			return fmt.Errorf("%w: failed to add history: %v", ErrInternal, err)
		}
	}

	for _, eventType := range events {
		if err := uc.events.Record(ctx, eventType, appointment, &ch.previous, now); err != nil {
			return fmt.Errorf("%w: failed to record event: %v", ErrInternal, err)
		}
	}

	return nil
}

// load получает запись и проверяет, что она принадлежит салону
func (uc *UseCase) load(ctx context.Context, req *Request) (*domain.Appointment, error) {
	appointment, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("UpdateAppointment: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("UpdateAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if appointment.SalonID != req.SalonID {
		uc.logger.Warn("UpdateAppointment: appointment id=%d belongs to salon=%d, not %d",
			req.AppointmentID, appointment.SalonID, req.SalonID)
		return nil, ErrAppointmentNotFound
	}

	return appointment, nil
}

// authorize проверяет права пользователя на изменение
func (uc *UseCase) authorize(ctx context.Context, req *Request, salon *salonservice.Salon, appointment *domain.Appointment) error {
	if salon.IsManager(req.UserID) {
		return nil
	}

	if req.IsReschedule() {
		uc.logger.Warn("UpdateAppointment: user=%d is not a manager of salon=%d", req.UserID, req.SalonID)
		return ErrAccessDenied
	}

	master, err := uc.salonClient.GetMaster(ctx, req.SalonID, appointment.MasterID)
	if err != nil && !errors.Is(err, salonservice.ErrMasterNotFound) {
		uc.logger.Error("UpdateAppointment: failed to get master id=%d: %v", appointment.MasterID, err)
		return fmt.Errorf("%w: failed to get master: %v", ErrInternal, err)
	}
	if access.IsMasterUser(master, req.UserID) {
		return nil
	}

	uc.logger.Warn("UpdateAppointment: user=%d cannot update appointment=%d", req.UserID, appointment.ID)
	return ErrAccessDenied
}

// checkMaster проверяет нового мастера
func (uc *UseCase) checkMaster(ctx context.Context, salonID, masterID, serviceID int64) error {
	master, err := uc.salonClient.GetMaster(ctx, salonID, masterID)
	if err != nil {
		if errors.Is(err, salonservice.ErrMasterNotFound) {
			uc.logger.Warn("UpdateAppointment: master id=%d not found", masterID)
			return ErrMasterNotFound
		}
		uc.logger.Error("UpdateAppointment: failed to get master id=%d: %v", masterID, err)
		return fmt.Errorf("%w: failed to get master: %v", ErrInternal, err)
	}

	if !master.IsActive {
		uc.logger.Warn("UpdateAppointment: master id=%d is inactive", masterID)
		return ErrMasterInactive
	}

	service, err := uc.salonClient.GetService(ctx, salonID, serviceID)
	if err != nil {
		uc.logger.Error("UpdateAppointment: failed to get service id=%d: %v", serviceID, err)
		return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.OfferedBy(masterID) {
		uc.logger.Warn("UpdateAppointment: master id=%d does not provide service id=%d", masterID, serviceID)
		return ErrMasterNotQualified
	}

	return nil
}

// mapCommitError переводит ошибки транзакции в ошибки use case
func (uc *UseCase) mapCommitError(err error) error {
	switch {
	case errors.Is(err, domain.ErrBookingConflict),
		errors.Is(err, appointmentRepo.ErrOverlap),
		errors.Is(err, appointmentRepo.ErrSerialization),
		errors.Is(err, txmanager.ErrSerializationFailure),
		txmanager.IsSerializationFailure(err):
		uc.metrics.IncBookingConflict("update")
		uc.logger.Warn("UpdateAppointment: booking conflict: %v", err)
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	case errors.Is(err, domain.ErrPolicyViolation),
		errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrInvalidInterval),
		errors.Is(err, ErrAppointmentNotFound):
		uc.logger.Warn("UpdateAppointment: rejected: %v", err)
		return err
	case errors.Is(err, ErrInternal):
		uc.logger.Error("UpdateAppointment: %v", err)
		return err
	}
	uc.logger.Error("UpdateAppointment: transaction failed: %v", err)
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// invalidate сбрасывает кэш слотов дня; ошибка кэша не отменяет изменение
func (uc *UseCase) invalidate(ctx context.Context, salonID int64, start time.Time, loc *time.Location) {
	local := start.In(loc)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if err := uc.slotCache.Invalidate(ctx, salonID, date); err != nil {
		uc.logger.Warn("UpdateAppointment: failed to invalidate slot cache for salon=%d date=%s: %v",
			salonID, date.Format(domain.DateFormat), err)
	}
}
