package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	policyRepo "github.com/m04kA/SMC-SalonBookingService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-SalonBookingService/internal/service/policy/models"
)

// Service сервис политик бронирования салонов
type Service struct {
	repo      PolicyRepository
	access    AccessChecker
	slotCache SlotCache
	logger    Logger
}

// NewService создает новый экземпляр сервиса политик
func NewService(repo PolicyRepository, access AccessChecker, slotCache SlotCache, logger Logger) *Service {
	return &Service{
		repo:      repo,
		access:    access,
		slotCache: slotCache,
		logger:    logger,
	}
}

// Resolve возвращает действующую политику салона: сохранённую или политику по умолчанию
func (s *Service) Resolve(ctx context.Context, salonID int64) (*domain.BookingPolicy, error) {
	policy, err := s.repo.GetBySalon(ctx, salonID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			return domain.DefaultBookingPolicy(salonID), nil
		}
		s.logger.Error("ResolvePolicy: repository error for salon=%d: %v", salonID, err)
		return nil, fmt.Errorf("%w: Resolve - repository error: %v", ErrInternal, err)
	}
	return policy, nil
}

// Get получает политику салона
// Публичный метод - доступен всем
func (s *Service) Get(ctx context.Context, salonID int64) (*models.PolicyResponse, error) {
	s.logger.Info("GetPolicy: salon=%d", salonID)

	if _, err := s.access.Salon(ctx, salonID); err != nil {
		return nil, err
	}

	policy, err := s.Resolve(ctx, salonID)
	if err != nil {
		return nil, err
	}

	return models.FromDomainPolicy(policy), nil
}

// Update изменяет политику салона
// Доступно только менеджерам салона
func (s *Service) Update(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("UpdatePolicy: salon=%d, user=%d", req.SalonID, req.UserID)

	if _, err := s.access.RequireManager(ctx, req.SalonID, req.UserID); err != nil {
		return nil, err
	}

	policy, err := s.Resolve(ctx, req.SalonID)
	if err != nil {
		return nil, err
	}

	req.Apply(policy)
	if err := Validate(policy); err != nil {
		s.logger.Warn("UpdatePolicy: validation failed: %v", err)
		return nil, err
	}

	updated, err := s.repo.Upsert(ctx, policy)
	if err != nil {
		s.logger.Error("UpdatePolicy: repository error for salon=%d: %v", req.SalonID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	// Шаг, буфер и горизонт влияют на все даты салона
	if err := s.slotCache.InvalidateSalon(ctx, req.SalonID); err != nil {
		s.logger.Warn("UpdatePolicy: failed to invalidate slot cache for salon=%d: %v", req.SalonID, err)
	}

	s.logger.Info("UpdatePolicy: successfully updated policy of salon=%d", req.SalonID)
	return models.FromDomainPolicy(updated), nil
}

// Validate проверяет значения политики на допустимые границы
func Validate(p *domain.BookingPolicy) error {
	if p.SlotStepMinutes < domain.MinSlotStepMinutes || p.SlotStepMinutes > domain.MaxSlotStepMinutes {
		return fmt.Errorf("%w: slotStepMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotStepMinutes, domain.MaxSlotStepMinutes)
	}
	if p.MinAdvanceMinutes < 0 || p.MinAdvanceMinutes > domain.MaxMinAdvanceMinutes {
		return fmt.Errorf("%w: minAdvanceMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxMinAdvanceMinutes)
	}
	if p.MaxFutureDays < 0 || p.MaxFutureDays > domain.MaxFutureDaysLimit {
		return fmt.Errorf("%w: maxFutureDays must be between 0 and %d", ErrInvalidInput, domain.MaxFutureDaysLimit)
	}
	if p.BufferMinutes < 0 || p.BufferMinutes > domain.MaxBufferMinutes {
		return fmt.Errorf("%w: bufferMinutes must be between 0 and %d", ErrInvalidInput, domain.MaxBufferMinutes)
	}
	return nil
}
