package timeblock

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

var timeBlockColumns = []string{
	"id",
	"salon_id",
	"master_id",
	"block_type",
	"title",
	"start_time",
	"end_time",
	"recurring",
	"day_of_week",
	"created_at",
}

// Repository репозиторий блоков времени мастеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория блоков времени
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый блок времени
func (r *Repository) Create(ctx context.Context, block *domain.TimeBlock) (*domain.TimeBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("time_blocks").
		Columns("salon_id", "master_id", "block_type", "title", "start_time", "end_time", "recurring", "day_of_week").
		Values(
			block.SalonID,
			block.MasterID,
			block.Type,
			block.Title,
			block.StartTime,
			block.EndTime,
			block.Recurring,
			block.DayOfWeek,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&block.ID, &block.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return block, nil
}

// GetByID получает блок времени по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.TimeBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(timeBlockColumns...).
		From("time_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	block, err := scanTimeBlock(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTimeBlockNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan time block: %v", ErrScanRow, err)
	}

	return block, nil
}

// GetForMaster получает блоки мастера, которые могут пересекать rng:
// разовые блоки, пересекающие диапазон, и все повторяющиеся блоки, начавшиеся до его конца.
// Вхождения повторяющихся блоков вычисляет вызывающая сторона (TimeBlock.OccurrencesIn).
func (r *Repository) GetForMaster(ctx context.Context, salonID, masterID int64, rng domain.TimeInterval) ([]*domain.TimeBlock, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(timeBlockColumns...).
		From("time_blocks").
		Where(squirrel.Eq{"salon_id": salonID}).
		Where(squirrel.Eq{"master_id": masterID}).
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"recurring": false},
				squirrel.Lt{"start_time": rng.End},
				squirrel.Gt{"end_time": rng.Start},
			},
			squirrel.And{
				squirrel.Eq{"recurring": true},
				squirrel.Lt{"start_time": rng.End},
			},
		}).
		OrderBy("start_time ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetForMaster - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetForMaster - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	blocks := make([]*domain.TimeBlock, 0)
	for rows.Next() {
		block, err := scanTimeBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetForMaster - scan row: %v", ErrScanRow, err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetForMaster - rows error: %v", ErrScanRow, err)
	}

	return blocks, nil
}

// Delete удаляет блок времени
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("time_blocks").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTimeBlockNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTimeBlock(row rowScanner) (*domain.TimeBlock, error) {
	var b domain.TimeBlock
	var createdAt sql.NullTime

	err := row.Scan(
		&b.ID,
		&b.SalonID,
		&b.MasterID,
		&b.Type,
		&b.Title,
		&b.StartTime,
		&b.EndTime,
		&b.Recurring,
		&b.DayOfWeek,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt = createdAt.Time
	return &b, nil
}
