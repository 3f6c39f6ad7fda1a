package create_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/clientservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/validator"
	"github.com/m04kA/SMC-SalonBookingService/pkg/txmanager"
)

// UseCase use case для создания записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	salonClient     SalonServiceClient
	clientService   ClientServiceClient
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
	clientService ClientServiceClient,
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
		clientService:   clientService,
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

// Execute выполняет use case создания записи
// Проверка свободного времени и вставка выполняются в одной сериализуемой транзакции
// под блокировкой мастера; конкурентная запись на то же время получает ErrSlotNotAvailable
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*models.AppointmentResponse, error) {
	uc.logger.Info("CreateAppointment: salon=%d, user=%d, client=%d, master=%d, service=%d, start=%s",
		req.SalonID, req.UserID, req.ClientID, req.MasterID, req.ServiceID, req.StartTime.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Салон, права и канал записи
	salon, err := uc.salonClient.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, salonservice.ErrSalonNotFound) {
			uc.logger.Warn("CreateAppointment: salon id=%d not found", req.SalonID)
			return nil, ErrSalonNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get salon id=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}

	isManager := salon.IsManager(req.UserID)
	if !isManager && req.ClientID != req.UserID {
		uc.logger.Warn("CreateAppointment: user=%d cannot book for client=%d", req.UserID, req.ClientID)
		return nil, ErrAccessDenied
	}

	source, err := resolveSource(req.Source, isManager)
	if err != nil {
		uc.logger.Warn("CreateAppointment: %v", err)
		return nil, err
	}

	loc, err := salon.Location()
	if err != nil {
		uc.logger.Error("CreateAppointment: invalid timezone %q of salon=%d: %v", salon.Timezone, req.SalonID, err)
		return nil, fmt.Errorf("%w: invalid salon timezone: %v", ErrInternal, err)
	}

	// 3. Услуга и мастер
	service, err := uc.loadService(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := uc.checkMaster(ctx, req, service); err != nil {
		return nil, err
	}

	// 4. Клиент; при недоступности ClientService запись принимается без проверки
	if err := uc.checkClient(ctx, req); err != nil {
		return nil, err
	}

	// 5. Политика салона
	policy, err := uc.policies.Resolve(ctx, req.SalonID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to get policy of salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: failed to get booking policy: %v", ErrInternal, err)
	}

	now := uc.timeProvider.Now()
	appointment := &domain.Appointment{
		SalonID:              req.SalonID,
		ClientID:             req.ClientID,
		MasterID:             req.MasterID,
		ServiceID:            req.ServiceID,
		StartTime:            req.StartTime.UTC(),
		EndTime:              req.StartTime.UTC().Add(time.Duration(service.DurationMinutes) * time.Minute),
		DurationMinutes:      service.DurationMinutes,
		ServiceBufferMinutes: service.BufferMinutes,
		Status:               initialStatus(source, policy),
		Source:               source,
		ServiceName:          service.Name,
		Price:                servicePrice(service),
		Currency:             salon.Currency,
		Notes:                req.Notes,
	}

	var result *domain.Appointment

	// 6. Проверка и вставка в одной транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := uc.appointmentRepo.LockMaster(txCtx, req.SalonID, req.MasterID); err != nil {
			return fmt.Errorf("%w: failed to lock master: %v", ErrInternal, err)
		}

		candidate := validator.Candidate{
			SalonID:              req.SalonID,
			MasterID:             req.MasterID,
			Interval:             appointment.Interval(),
			ServiceBufferMinutes: appointment.ServiceBufferMinutes,
		}
		if err := uc.validator.Check(txCtx, candidate, policy, loc, now); err != nil {
			return err
		}

		created, err := uc.appointmentRepo.Create(txCtx, appointment)
		if err != nil {
			return err
		}

		status := created.Status
		start := created.StartTime
		master := created.MasterID
		if err := uc.appointmentRepo.AddHistory(txCtx, &domain.AppointmentHistory{
			AppointmentID: created.ID,
			Action:        domain.ActionCreated,
			NewStatus:     &status,
			NewStartTime:  &start,
			NewMasterID:   &master,
			ChangedBy:     req.UserID,
			Notes:         req.Notes,
		}); err != nil {
			return fmt.Errorf("%w: failed to add history: %v", ErrInternal, err)
		}

		if err := uc.events.Record(txCtx, domain.EventAppointmentCreated, created, nil, now); err != nil {
			return fmt.Errorf("%w: failed to record event: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		return nil, uc.mapCommitError(err)
	}

	uc.metrics.IncAppointmentCreated(string(source))
	uc.invalidate(ctx, result, loc)

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d, status=%s", result.ID, result.Status)
	return models.FromDomainAppointment(result), nil
}

// loadService получает услугу и проверяет, что она принимает записи
func (uc *UseCase) loadService(ctx context.Context, req *Request) (*salonservice.Service, error) {
	service, err := uc.salonClient.GetService(ctx, req.SalonID, req.ServiceID)
	if err != nil {
		if errors.Is(err, salonservice.ErrServiceNotFound) {
			uc.logger.Warn("CreateAppointment: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	if !service.IsActive {
		uc.logger.Warn("CreateAppointment: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceInactive
	}

	if err := service.ValidateTiming(); err != nil {
		uc.logger.Error("CreateAppointment: service id=%d rejected: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return service, nil
}

// checkMaster проверяет, что мастер работает и оказывает услугу
func (uc *UseCase) checkMaster(ctx context.Context, req *Request, service *salonservice.Service) error {
	master, err := uc.salonClient.GetMaster(ctx, req.SalonID, req.MasterID)
	if err != nil {
		if errors.Is(err, salonservice.ErrMasterNotFound) {
			uc.logger.Warn("CreateAppointment: master id=%d not found", req.MasterID)
			return ErrMasterNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get master id=%d: %v", req.MasterID, err)
		return fmt.Errorf("%w: failed to get master: %v", ErrInternal, err)
	}

	if !master.IsActive {
		uc.logger.Warn("CreateAppointment: master id=%d is inactive", req.MasterID)
		return ErrMasterInactive
	}

	if !service.OfferedBy(master.ID) {
		uc.logger.Warn("CreateAppointment: master id=%d does not provide service id=%d", master.ID, service.ID)
		return ErrMasterNotQualified
	}

	return nil
}

// checkClient проверяет клиента в ClientService
func (uc *UseCase) checkClient(ctx context.Context, req *Request) error {
	admission, err := uc.clientService.Admit(ctx, req.SalonID, req.ClientID)
	if err != nil {
		if errors.Is(err, clientservice.ErrClientNotFound) {
			uc.logger.Warn("CreateAppointment: client id=%d not found in salon=%d", req.ClientID, req.SalonID)
			return ErrClientNotFound
		}
		uc.logger.Error("CreateAppointment: failed to check client id=%d: %v", req.ClientID, err)
		return fmt.Errorf("%w: failed to check client: %v", ErrInternal, err)
	}

	switch admission {
	case clientservice.AdmissionBlocked:
		uc.logger.Warn("CreateAppointment: client id=%d is blocked in salon=%d", req.ClientID, req.SalonID)
		return ErrClientBlocked
	case clientservice.AdmissionDenied:
		return ErrClientNotFound
	case clientservice.AdmissionUnverified:
		uc.logger.Warn("CreateAppointment: client id=%d booked without block check", req.ClientID)
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
		uc.metrics.IncBookingConflict("create")
		uc.logger.Warn("CreateAppointment: booking conflict: %v", err)
		return fmt.Errorf("%w: %v", ErrSlotNotAvailable, err)
	case errors.Is(err, domain.ErrPolicyViolation), errors.Is(err, domain.ErrInvalidInterval):
		uc.logger.Warn("CreateAppointment: rejected: %v", err)
		return err
	case errors.Is(err, ErrInternal):
		uc.logger.Error("CreateAppointment: %v", err)
		return err
	}
	uc.logger.Error("CreateAppointment: transaction failed: %v", err)
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// invalidate сбрасывает кэш слотов дня записи; ошибка кэша не отменяет запись
func (uc *UseCase) invalidate(ctx context.Context, appointment *domain.Appointment, loc *time.Location) {
	local := appointment.StartTime.In(loc)
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	if err := uc.slotCache.Invalidate(ctx, appointment.SalonID, date); err != nil {
		uc.logger.Warn("CreateAppointment: failed to invalidate slot cache for salon=%d date=%s: %v",
			appointment.SalonID, date.Format(domain.DateFormat), err)
	}
}

// servicePrice цена услуги; не указана - 0
func servicePrice(service *salonservice.Service) float64 {
	if service.Price == nil {
		return 0
	}
	return *service.Price
}
