package appointment

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrOverlap возвращается, когда exclusion constraint отклонил пересекающуюся запись
	ErrOverlap = errors.New("appointment.repository: overlapping appointment")

	// ErrSerialization возвращается при конфликте сериализуемых транзакций
	ErrSerialization = errors.New("appointment.repository: serialization failure")

	// ErrNotInTransaction возвращается, когда операция требует транзакции
	ErrNotInTransaction = errors.New("appointment.repository: transaction required")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)

const (
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
)

// classify превращает ошибки PostgreSQL в ошибки репозитория; nil - если ошибка не распознана
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch string(pqErr.Code) {
	case pgExclusionViolation:
		return ErrOverlap
	case pgSerializationFailure:
		return ErrSerialization
	}
	return nil
}
