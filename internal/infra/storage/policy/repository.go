package policy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

// Repository репозиторий политик бронирования салонов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политик
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBySalon получает политику салона
// Если политика не настроена, возвращает ErrPolicyNotFound
func (r *Repository) GetBySalon(ctx context.Context, salonID int64) (*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"salon_id",
		"min_advance_minutes",
		"max_future_days",
		"buffer_minutes",
		"slot_step_minutes",
		"auto_confirm",
		"created_at",
		"updated_at",
	).
		From("booking_policies").
		Where(squirrel.Eq{"salon_id": salonID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalon - build select query: %v", ErrBuildQuery, err)
	}

	var policy domain.BookingPolicy
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&policy.ID,
		&policy.SalonID,
		&policy.MinAdvanceMinutes,
		&policy.MaxFutureDays,
		&policy.BufferMinutes,
		&policy.SlotStepMinutes,
		&policy.AutoConfirm,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPolicyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySalon - scan policy: %v", ErrScanRow, err)
	}

	policy.CreatedAt = createdAt.Time
	policy.UpdatedAt = updatedAt.Time

	return &policy, nil
}

// Upsert создает или перезаписывает политику салона (одна на салон)
func (r *Repository) Upsert(ctx context.Context, policy *domain.BookingPolicy) (*domain.BookingPolicy, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("booking_policies").
		Columns(
			"salon_id",
			"min_advance_minutes",
			"max_future_days",
			"buffer_minutes",
			"slot_step_minutes",
			"auto_confirm",
		).
		Values(
			policy.SalonID,
			policy.MinAdvanceMinutes,
			policy.MaxFutureDays,
			policy.BufferMinutes,
			policy.SlotStepMinutes,
			policy.AutoConfirm,
		).
		Suffix(`ON CONFLICT (salon_id) DO UPDATE SET
			min_advance_minutes = EXCLUDED.min_advance_minutes,
			max_future_days = EXCLUDED.max_future_days,
			buffer_minutes = EXCLUDED.buffer_minutes,
			slot_step_minutes = EXCLUDED.slot_step_minutes,
			auto_confirm = EXCLUDED.auto_confirm,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&policy.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}

	policy.CreatedAt = createdAt.Time
	policy.UpdatedAt = updatedAt.Time

	return policy, nil
}
