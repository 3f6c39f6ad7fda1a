package clientservice

import "errors"

var (
	// ErrClientNotFound возвращается, когда клиент не найден в салоне
	ErrClientNotFound = errors.New("clientservice client: client not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("clientservice client: internal error")

	// ErrUnavailable сервис не ответил или ответил 5xx
	ErrUnavailable = errors.New("clientservice client: service unavailable")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("clientservice client: invalid response")
)
