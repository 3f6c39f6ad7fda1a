package outbox

import "errors"

var (
	// ErrPublish ошибка цикла публикации
	ErrPublish = errors.New("outbox publisher: publish failed")
)
