package policy

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных значениях политики
	ErrInvalidInput = errors.New("policy: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("policy: internal error")
)
