package cancel_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

// UseCase use case для отмены записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	access          AccessChecker
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
	access AccessChecker,
	events EventRecorder,
	slotCache SlotCache,
	txManager TransactionManager,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		access:          access,
		events:          events,
		slotCache:       slotCache,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case отмены записи
// Отменить может менеджер салона, клиент или мастер записи
// Отменённая запись перестаёт занимать время мастера
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.AppointmentResponse, error) {
	uc.logger.Info("CancelAppointment: salon=%d, appointment=%d, user=%d", req.SalonID, req.AppointmentID, req.UserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CancelAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем запись и проверяем права
	current, err := uc.load(ctx, req)
	if err != nil {
		return nil, err
	}

	salon, err := uc.access.RequireParticipant(ctx, current, req.UserID)
	if err != nil {
		uc.logger.Warn("CancelAppointment: access check failed for user=%d: %v", req.UserID, err)
		return nil, err
	}

	loc, err := salon.Location()
	if err != nil {
		uc.logger.Error("CancelAppointment: invalid timezone %q of salon=%d: %v", salon.Timezone, req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid salon timezone: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	var result *domain.Appointment

	// 3. Отмена в транзакции; строка перечитывается с блокировкой
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		appointment, err := uc.appointmentRepo.GetByID(txCtx, req.AppointmentID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
		}

		if !appointment.CanBeCancelled() {
			return fmt.Errorf("%w: status=%s", ErrCannotCancel, appointment.Status)
		}

		previous := *appointment
		cancelledAt := now.UTC()
		appointment.Status = domain.StatusCancelled
		appointment.CancelledAt = &cancelledAt
		appointment.CancellationReason = req.Reason

		if err := uc.appointmentRepo.Update(txCtx, appointment); err != nil {
			return fmt.Errorf("%w: failed to update appointment: %v", ErrInternal, err)
		}

		if err := uc.appointmentRepo.AddHistory(txCtx, &domain.AppointmentHistory{
			AppointmentID: appointment.ID,
			Action:        domain.ActionCancelled,
			OldStatus:     &previous.Status,
			NewStatus:     &appointment.Status,
			ChangedBy:     req.UserID,
			Notes:         req.Reason,
		}); err != nil {
			return fmt.Errorf("%w: failed to add history: %v", ErrInternal, err)
		}

		if err := uc.events.Record(txCtx, domain.EventAppointmentCancelled, appointment, &previous, now); err != nil {
			return fmt.Errorf("%w: failed to record event: %v", ErrInternal, err)
		}

		result = appointment
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrCannotCancel) || errors.Is(err, ErrAppointmentNotFound) {
			uc.logger.Warn("CancelAppointment: rejected: %v", err)
			return nil, err
		}
		uc.logger.Error("CancelAppointment: transaction failed: %v", err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.metrics.IncTransition(string(domain.StatusCancelled))

	local := result.StartTime.In(loc)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if err := uc.slotCache.Invalidate(ctx, result.SalonID, date); err != nil {
		uc.logger.Warn("CancelAppointment: failed to invalidate slot cache for salon=%d date=%s: %v",
			result.SalonID, date.Format(domain.DateFormat), err)
	}

	uc.logger.Info("CancelAppointment: successfully cancelled appointment id=%d", result.ID)
	return models.FromDomainAppointment(result), nil
}

// load получает запись и проверяет, что она принадлежит салону
func (uc *UseCase) load(ctx context.Context, req *Request) (*domain.Appointment, error) {
	appointment, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("CancelAppointment: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("CancelAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	if appointment.SalonID != req.SalonID {
		return nil, ErrAppointmentNotFound
	}

	return appointment, nil
}

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.SalonID <= 0 {
		return fmt.Errorf("%w: salonId must be positive", ErrInvalidInput)
	}

	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointmentId must be positive", ErrInvalidInput)
	}

	if req.UserID <= 0 {
		return fmt.Errorf("%w: userId must be positive", ErrInvalidInput)
	}

	if req.Reason != nil && utf8.RuneCountInString(*req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason must not exceed %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	return nil
}
