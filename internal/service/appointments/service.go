package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/access"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/appointments/models"
)

// Service сервис чтения записей салона
type Service struct {
	repo   AppointmentRepository
	access AccessChecker
	logger Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(repo AppointmentRepository, access AccessChecker, logger Logger) *Service {
	return &Service{
		repo:   repo,
		access: access,
		logger: logger,
	}
}

// GetByID получает запись салона по ID
// Доступно менеджеру салона, клиенту и мастеру записи
func (s *Service) GetByID(ctx context.Context, salonID, id, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetAppointment: salon=%d, appointment=%d, user=%d", salonID, id, userID)

	appointment, err := s.load(ctx, salonID, id, userID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainAppointment(appointment), nil
}

// History получает журнал изменений записи
func (s *Service) History(ctx context.Context, salonID, id, userID int64) (*models.HistoryResponse, error) {
	s.logger.Info("GetAppointmentHistory: salon=%d, appointment=%d, user=%d", salonID, id, userID)

	if _, err := s.load(ctx, salonID, id, userID); err != nil {
		return nil, err
	}

	history, err := s.repo.GetHistory(ctx, id)
	if err != nil {
		s.logger.Error("GetAppointmentHistory: repository error for appointment=%d: %v", id, err)
		return nil, fmt.Errorf("%w: History - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainHistory(id, history), nil
}

// List получает записи салона с фильтрацией
// Менеджер видит все записи; мастер - только свои; остальные - только записи, где они клиент
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("ListAppointments: salon=%d, user=%d, master=%v, client=%v, status=%v, includeInactive=%t",
		req.SalonID, req.UserID, req.MasterID, req.ClientID, req.Status, req.IncludeInactive)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListAppointments: invalid filter for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.scope(ctx, &filter, req.UserID); err != nil {
		return nil, err
	}

	appointments, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListAppointments: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListAppointments: fetched %d appointments for salon=%d", len(appointments), req.SalonID)
	return models.FromDomainAppointmentList(appointments), nil
}

// scope сужает фильтр до записей, которые пользователь вправе видеть
func (s *Service) scope(ctx context.Context, filter *domain.AppointmentsFilter, userID int64) error {
	salon, err := s.access.Salon(ctx, filter.SalonID)
	if err != nil {
		return err
	}
	if salon.IsManager(userID) {
		return nil
	}

	if filter.MasterID != nil {
		master, err := s.access.Master(ctx, filter.SalonID, *filter.MasterID)
		if err != nil {
			return err
		}
		if access.IsMasterUser(master, userID) {
			return nil
		}
	}

	if filter.ClientID != nil && *filter.ClientID != userID {
		s.logger.Warn("ListAppointments: user=%d cannot list appointments of client=%d", userID, *filter.ClientID)
		return access.ErrAccessDenied
	}
	filter.ClientID = &userID
	return nil
}

// load получает запись и проверяет, что пользователь в ней участвует
func (s *Service) load(ctx context.Context, salonID, id, userID int64) (*domain.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Appointments: appointment id=%d not found", id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Appointments: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if appointment.SalonID != salonID {
		s.logger.Warn("Appointments: appointment id=%d does not belong to salon=%d", id, salonID)
		return nil, ErrAppointmentNotFound
	}

	if _, err := s.access.RequireParticipant(ctx, appointment, userID); err != nil {
		return nil, err
	}

	return appointment, nil
}
