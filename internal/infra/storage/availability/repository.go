package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/psqlbuilder"
)

var ruleColumns = []string{
	"id",
	"salon_id",
	"master_id",
	"day_of_week",
	"start_time",
	"end_time",
	"is_working",
	"updated_at",
}

var overrideColumns = []string{
	"id",
	"salon_id",
	"master_id",
	"override_date",
	"is_working",
	"start_time",
	"end_time",
	"reason",
	"created_at",
}

// Repository репозиторий недельных правил и исключений по датам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetRule получает правило мастера на день недели (1 = понедельник)
func (r *Repository) GetRule(ctx context.Context, salonID, masterID int64, dayOfWeek int) (*domain.WeeklyAvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("availability_rules").
		Where(squirrel.Eq{"salon_id": salonID}).
		Where(squirrel.Eq{"master_id": masterID}).
		Where(squirrel.Eq{"day_of_week": dayOfWeek}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRule - build select query: %v", ErrBuildQuery, err)
	}

	rule, err := scanRule(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetRule - scan rule: %v", ErrScanRow, err)
	}

	return rule, nil
}

// GetRules получает все недельные правила мастера, отсортированные по дню недели
func (r *Repository) GetRules(ctx context.Context, salonID, masterID int64) ([]*domain.WeeklyAvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("availability_rules").
		Where(squirrel.Eq{"salon_id": salonID}).
		Where(squirrel.Eq{"master_id": masterID}).
		OrderBy("day_of_week ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRules - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	rules := make([]*domain.WeeklyAvailabilityRule, 0, 7)
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetRules - scan row: %v", ErrScanRow, err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRules - rows error: %v", ErrScanRow, err)
	}

	return rules, nil
}

// UpsertRules перезаписывает правила по дням недели; правила никогда не удаляются
func (r *Repository) UpsertRules(ctx context.Context, rules []*domain.WeeklyAvailabilityRule) error {
	if len(rules) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert := psqlbuilder.Insert("availability_rules").
		Columns("salon_id", "master_id", "day_of_week", "start_time", "end_time", "is_working")

	for _, rule := range rules {
		insert = insert.Values(
			rule.SalonID,
			rule.MasterID,
			rule.DayOfWeek,
			rule.StartTime,
			rule.EndTime,
			rule.IsWorking,
		)
	}

	query, args, err := insert.
		Suffix(`ON CONFLICT (salon_id, master_id, day_of_week) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			is_working = EXCLUDED.is_working,
			updated_at = NOW()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpsertRules - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: UpsertRules - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetOverride получает исключение мастера на календарную дату
func (r *Repository) GetOverride(ctx context.Context, salonID, masterID int64, date time.Time) (*domain.AvailabilityOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(overrideColumns...).
		From("availability_overrides").
		Where(squirrel.Eq{"salon_id": salonID}).
		Where(squirrel.Eq{"master_id": masterID}).
		Where(squirrel.Eq{"override_date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOverride - build select query: %v", ErrBuildQuery, err)
	}

	override, err := scanOverride(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOverrideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverride - scan override: %v", ErrScanRow, err)
	}

	return override, nil
}

// GetOverrides получает исключения мастера в диапазоне дат [from, to] включительно
func (r *Repository) GetOverrides(ctx context.Context, salonID, masterID int64, from, to time.Time) ([]*domain.AvailabilityOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(overrideColumns...).
		From("availability_overrides").
		Where(squirrel.Eq{"salon_id": salonID}).
		Where(squirrel.Eq{"master_id": masterID}).
		Where(squirrel.GtOrEq{"override_date": from.Format(domain.DateFormat)}).
		Where(squirrel.LtOrEq{"override_date": to.Format(domain.DateFormat)}).
		OrderBy("override_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	overrides := make([]*domain.AvailabilityOverride, 0)
	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetOverrides - scan row: %v", ErrScanRow, err)
		}
		overrides = append(overrides, override)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetOverrides - rows error: %v", ErrScanRow, err)
	}

	return overrides, nil
}

// CreateOverride создает исключение; на одну дату допускается только одно (ErrDuplicateOverride)
func (r *Repository) CreateOverride(ctx context.Context, override *domain.AvailabilityOverride) (*domain.AvailabilityOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_overrides").
		Columns("salon_id", "master_id", "override_date", "is_working", "start_time", "end_time", "reason").
		Values(
			override.SalonID,
			override.MasterID,
			override.Date.Format(domain.DateFormat),
			override.IsWorking,
			override.StartTime,
			override.EndTime,
			override.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateOverride - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&override.ID, &override.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateOverride
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CreateOverride - execute insert: %v", ErrExecQuery, err)
	}

	return override, nil
}

// DeleteOverride удаляет исключение на дату
func (r *Repository) DeleteOverride(ctx context.Context, salonID, masterID int64, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("availability_overrides").
		Where(squirrel.Eq{"salon_id": salonID}).
		Where(squirrel.Eq{"master_id": masterID}).
		Where(squirrel.Eq{"override_date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrOverrideNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*domain.WeeklyAvailabilityRule, error) {
	var rule domain.WeeklyAvailabilityRule
	var updatedAt sql.NullTime

	err := row.Scan(
		&rule.ID,
		&rule.SalonID,
		&rule.MasterID,
		&rule.DayOfWeek,
		&rule.StartTime,
		&rule.EndTime,
		&rule.IsWorking,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.UpdatedAt = updatedAt.Time
	return &rule, nil
}

func scanOverride(row rowScanner) (*domain.AvailabilityOverride, error) {
	var o domain.AvailabilityOverride
	var createdAt sql.NullTime

	err := row.Scan(
		&o.ID,
		&o.SalonID,
		&o.MasterID,
		&o.Date,
		&o.IsWorking,
		&o.StartTime,
		&o.EndTime,
		&o.Reason,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	o.CreatedAt = createdAt.Time
	return &o, nil
}
