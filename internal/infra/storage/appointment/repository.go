package appointment

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

var appointmentColumns = []string{
	"id",
	"salon_id",
	"client_id",
	"master_id",
	"service_id",
	"start_time",
	"end_time",
	"duration_minutes",
	"service_buffer_minutes",
	"status",
	"source",
	"service_name",
	"price",
	"currency",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями к мастерам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись
// Если в контексте передана активная транзакция, использует её.
// Пересечение с активной записью того же мастера отклоняется exclusion constraint (ErrOverlap).
func (r *Repository) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"salon_id",
			"client_id",
			"master_id",
			"service_id",
			"start_time",
			"end_time",
			"duration_minutes",
			"service_buffer_minutes",
			"status",
			"source",
			"service_name",
			"price",
			"currency",
			"notes",
		).
		Values(
			appointment.SalonID,
			appointment.ClientID,
			appointment.MasterID,
			appointment.ServiceID,
			appointment.StartTime,
			appointment.EndTime,
			appointment.DurationMinutes,
			appointment.ServiceBufferMinutes,
			appointment.Status,
			appointment.Source,
			appointment.ServiceName,
			appointment.Price,
			appointment.Currency,
			appointment.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appointment.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if known := classify(err); known != nil {
			return nil, fmt.Errorf("%w: Create: %v", known, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appointment.CreatedAt = createdAt.Time
	appointment.UpdatedAt = updatedAt.Time

	return appointment, nil
}

// GetByID получает запись по ID
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appointment, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	return appointment, nil
}

// GetByFilter получает записи салона с фильтрацией
// Поддерживает фильтрацию по мастеру, клиенту, периоду, статусу и включению неактивных записей
func (r *Repository) GetByFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"salon_id": filter.SalonID})

	if filter.MasterID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"master_id": *filter.MasterID})
	}
	if filter.ClientID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_time": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.To})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": statusStrings(domain.InactiveStatuses)})
	}

	query, args, err := selectBuilder.OrderBy("start_time ASC", "master_id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// GetOccupying получает активные записи мастера, пересекающие [From, To)
// Используется агрегатором занятости; внутри транзакции строки блокируются (FOR UPDATE)
func (r *Repository) GetOccupying(ctx context.Context, filter domain.OccupancyFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"salon_id": filter.SalonID}).
		Where(squirrel.Eq{"master_id": filter.MasterID}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		Where(squirrel.Lt{"start_time": filter.To}).
		Where(squirrel.Gt{"end_time": filter.From})

	if filter.ExcludeAppointmentID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *filter.ExcludeAppointmentID})
	}

	selectBuilder = selectBuilder.OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOccupying - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if known := classify(err); known != nil {
			return nil, fmt.Errorf("%w: GetOccupying: %v", known, err)
		}
		return nil, fmt.Errorf("%w: GetOccupying - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// LockMaster берёт транзакционную advisory-блокировку на расписание мастера
// Блокировка снимается при commit/rollback; вне транзакции возвращает ErrNotInTransaction
func (r *Repository) LockMaster(ctx context.Context, salonID, masterID int64) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNotInTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	key := fmt.Sprintf("salon:%d:master:%d", salonID, masterID)
	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("%w: LockMaster - execute: %v", ErrExecQuery, err)
	}
	return nil
}

// Update сохраняет изменяемые поля записи (время, мастер, статус, заметки, отмена)
func (r *Repository) Update(ctx context.Context, appointment *domain.Appointment) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("master_id", appointment.MasterID).
		Set("start_time", appointment.StartTime).
		Set("end_time", appointment.EndTime).
		Set("status", appointment.Status).
		Set("notes", appointment.Notes).
		Set("cancellation_reason", appointment.CancellationReason).
		Set("cancelled_at", appointment.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": appointment.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAppointmentNotFound
	}
	if err != nil {
		if known := classify(err); known != nil {
			return fmt.Errorf("%w: Update: %v", known, err)
		}
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	appointment.UpdatedAt = updatedAt.Time
	return nil
}

// AddHistory сохраняет запись аудита изменения
func (r *Repository) AddHistory(ctx context.Context, h *domain.AppointmentHistory) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointment_history").
		Columns(
			"appointment_id",
			"action",
			"old_status",
			"new_status",
			"old_start_time",
			"new_start_time",
			"old_master_id",
			"new_master_id",
			"changed_by",
			"notes",
		).
		Values(
			h.AppointmentID,
			h.Action,
			h.OldStatus,
			h.NewStatus,
			h.OldStartTime,
			h.NewStartTime,
			h.OldMasterID,
			h.NewMasterID,
			h.ChangedBy,
			h.Notes,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&h.ID, &h.CreatedAt); err != nil {
		return fmt.Errorf("%w: AddHistory - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// GetHistory получает историю изменений записи в хронологическом порядке
func (r *Repository) GetHistory(ctx context.Context, appointmentID int64) ([]*domain.AppointmentHistory, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"appointment_id",
		"action",
		"old_status",
		"new_status",
		"old_start_time",
		"new_start_time",
		"old_master_id",
		"new_master_id",
		"changed_by",
		"notes",
		"created_at",
	).
		From("appointment_history").
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	history := make([]*domain.AppointmentHistory, 0)
	for rows.Next() {
		var h domain.AppointmentHistory
		if err := rows.Scan(
			&h.ID,
			&h.AppointmentID,
			&h.Action,
			&h.OldStatus,
			&h.NewStatus,
			&h.OldStartTime,
			&h.NewStartTime,
			&h.OldMasterID,
			&h.NewMasterID,
			&h.ChangedBy,
			&h.Notes,
			&h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetHistory - scan row: %v", ErrScanRow, err)
		}
		history = append(history, &h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetHistory - rows error: %v", ErrScanRow, err)
	}

	return history, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.SalonID,
		&a.ClientID,
		&a.MasterID,
		&a.ServiceID,
		&a.StartTime,
		&a.EndTime,
		&a.DurationMinutes,
		&a.ServiceBufferMinutes,
		&a.Status,
		&a.Source,
		&a.ServiceName,
		&a.Price,
		&a.Currency,
		&a.Notes,
		&a.CancellationReason,
		&a.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time
	return &a, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
