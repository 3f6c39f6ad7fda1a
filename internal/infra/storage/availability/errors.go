package availability

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrRuleNotFound возвращается, когда у мастера нет правила на день недели
	ErrRuleNotFound = errors.New("availability.repository: weekly rule not found")

	// ErrOverrideNotFound возвращается, когда исключение на дату не найдено
	ErrOverrideNotFound = errors.New("availability.repository: override not found")

	// ErrDuplicateOverride возвращается при попытке создать второе исключение на ту же дату
	ErrDuplicateOverride = errors.New("availability.repository: override for date already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("availability.repository: failed to scan row")
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation
}
