package events

import (
	"context"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

// OutboxRepository интерфейс репозитория outbox
type OutboxRepository interface {
	Insert(ctx context.Context, event *domain.OutboxEvent) error
}
