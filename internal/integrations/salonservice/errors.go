package salonservice

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("salonservice client: salon not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в салоне
	ErrServiceNotFound = errors.New("salonservice client: service not found")

	// ErrMasterNotFound возвращается, когда мастер не найден в салоне
	ErrMasterNotFound = errors.New("salonservice client: master not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("salonservice client: internal error")

	// ErrInvalidService возвращается, когда длительность или буфер услуги вне допустимых границ
	ErrInvalidService = errors.New("salonservice client: invalid service timing")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("salonservice client: invalid response")
)
