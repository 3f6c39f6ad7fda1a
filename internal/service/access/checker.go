package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/internal/integrations/salonservice"
)

// Checker проверяет права пользователя в салоне по данным SalonService
type Checker struct {
	salonClient SalonServiceClient
	logger      Logger
}

// NewChecker создает новый экземпляр проверки прав
func NewChecker(salonClient SalonServiceClient, logger Logger) *Checker {
	return &Checker{
		salonClient: salonClient,
		logger:      logger,
	}
}

// Salon получает салон, переводя ошибки SalonService в ошибки пакета
func (c *Checker) Salon(ctx context.Context, salonID int64) (*salonservice.Salon, error) {
	salon, err := c.salonClient.GetSalon(ctx, salonID)
	if err != nil {
		if errors.Is(err, salonservice.ErrSalonNotFound) {
			c.logger.Warn("access: salon id=%d not found", salonID)
			return nil, ErrSalonNotFound
		}
		c.logger.Error("access: failed to get salon id=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: failed to get salon: %v", ErrInternal, err)
	}
	return salon, nil
}

// Master получает мастера салона
func (c *Checker) Master(ctx context.Context, salonID, masterID int64) (*salonservice.Master, error) {
	master, err := c.salonClient.GetMaster(ctx, salonID, masterID)
	if err != nil {
		if errors.Is(err, salonservice.ErrMasterNotFound) {
			c.logger.Warn("access: master id=%d not found in salon id=%d", masterID, salonID)
			return nil, ErrMasterNotFound
		}
		c.logger.Error("access: failed to get master id=%d: %v", masterID, err)
		return nil, fmt.Errorf("%w: failed to get master: %v", ErrInternal, err)
	}
	return master, nil
}

// RequireManager проверяет, что пользователь - менеджер салона
func (c *Checker) RequireManager(ctx context.Context, salonID, userID int64) (*salonservice.Salon, error) {
	salon, err := c.Salon(ctx, salonID)
	if err != nil {
		return nil, err
	}

	if !salon.IsManager(userID) {
		c.logger.Warn("access: user=%d is not a manager of salon=%d", userID, salonID)
		return nil, ErrAccessDenied
	}

	return salon, nil
}

// RequireScheduleEditor проверяет, что пользователь может менять расписание мастера:
// менеджер салона или сам мастер
func (c *Checker) RequireScheduleEditor(ctx context.Context, salonID, masterID, userID int64) (*salonservice.Salon, *salonservice.Master, error) {
	salon, err := c.Salon(ctx, salonID)
	if err != nil {
		return nil, nil, err
	}

	master, err := c.Master(ctx, salonID, masterID)
	if err != nil {
		return nil, nil, err
	}

	if salon.IsManager(userID) {
		return salon, master, nil
	}
	if master.UserID != nil && *master.UserID == userID {
		return salon, master, nil
	}

	c.logger.Warn("access: user=%d cannot edit schedule of master=%d in salon=%d", userID, masterID, salonID)
	return nil, nil, ErrAccessDenied
}

// RequireParticipant проверяет, что пользователь участвует в записи:
// менеджер салона, клиент записи или мастер записи
func (c *Checker) RequireParticipant(ctx context.Context, appointment *domain.Appointment, userID int64) (*salonservice.Salon, error) {
	salon, err := c.Salon(ctx, appointment.SalonID)
	if err != nil {
		return nil, err
	}

	if salon.IsManager(userID) || appointment.ClientID == userID {
		return salon, nil
	}

	master, err := c.Master(ctx, appointment.SalonID, appointment.MasterID)
	if err != nil && !errors.Is(err, ErrMasterNotFound) {
		return nil, err
	}
	if IsMasterUser(master, userID) {
		return salon, nil
	}

	c.logger.Warn("access: user=%d is not a participant of appointment=%d", userID, appointment.ID)
	return nil, ErrAccessDenied
}

// IsMasterUser проверяет, что пользователь - сам мастер
func IsMasterUser(master *salonservice.Master, userID int64) bool {
	return master != nil && master.UserID != nil && *master.UserID == userID
}
