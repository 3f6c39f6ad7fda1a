package events

import "errors"

var (
	// ErrEncode возвращается, когда событие не удалось сериализовать
	ErrEncode = errors.New("events: failed to encode event")

	// ErrStore возвращается, когда событие не удалось записать в outbox
	ErrStore = errors.New("events: failed to store event")
)
