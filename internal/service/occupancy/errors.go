package occupancy

import "errors"

var (
	// ErrInternal возвращается при ошибках чтения хранилища
	ErrInternal = errors.New("occupancy: internal error")
)
