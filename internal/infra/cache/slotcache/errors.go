package slotcache

import "errors"

var (
	// ErrCache возвращается при ошибках Redis
	ErrCache = errors.New("slotcache: redis error")

	// ErrDecode возвращается при повреждённой записи кэша
	ErrDecode = errors.New("slotcache: failed to decode entry")
)
