package outbox

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// OutboxRepository интерфейс репозитория outbox
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64) error
	IncrementAttempts(ctx context.Context, ids []int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MessageWriter запись сообщений в Kafka (*kafka.Writer)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Metrics счётчик опубликованных событий
type Metrics interface {
	IncOutboxPublished(eventType string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
