package outbox

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
)

const (
	defaultPollInterval = time.Second
	defaultBatchSize    = 100
)

// Config параметры публикации
type Config struct {
	Topic        string
	PollInterval time.Duration
	BatchSize    int
}

// Publisher переносит события из outbox в Kafka
// Доставка "хотя бы один раз": событие помечается опубликованным после успешной записи в Kafka,
// потребители отбрасывают повторы по заголовку event_id
type Publisher struct {
	repo      OutboxRepository
	txManager TransactionManager
	writer    MessageWriter
	metrics   Metrics
	logger    Logger
	cfg       Config
}

// NewPublisher создает новый экземпляр публикатора
func NewPublisher(
	repo OutboxRepository,
	txManager TransactionManager,
	writer MessageWriter,
	metrics Metrics,
	logger Logger,
	cfg Config,
) *Publisher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Publisher{
		repo:      repo,
		txManager: txManager,
		writer:    writer,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// NewKafkaWriter создает writer топика событий; ключ сообщения - мастер,
// поэтому события одного мастера попадают в одну партицию по порядку
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// Run публикует события до отмены ctx
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("Outbox publisher started: topic=%s, poll=%s, batch=%d",
		p.cfg.Topic, p.cfg.PollInterval, p.cfg.BatchSize)

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox publisher stopped")
			return
		case <-ticker.C:
			// Полная пачка - в outbox, вероятно, есть ещё события
			for {
				n, err := p.PublishBatch(ctx)
				if err != nil {
					p.logger.Error("Outbox publisher: publish failed: %v", err)
					break
				}
				if n < p.cfg.BatchSize || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

// PublishBatch публикует одну пачку событий и возвращает число опубликованных
// Строки outbox заблокированы на время записи в Kafka (FOR UPDATE SKIP LOCKED),
// несколько экземпляров сервиса не публикуют одно событие одновременно
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	var (
		published []*domain.OutboxEvent
		writeErr  error
	)

	err := p.txManager.Do(ctx, func(txCtx context.Context) error {
		events, err := p.repo.FetchUnpublished(txCtx, p.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("%w: fetch: %v", ErrPublish, err)
		}
		if len(events) == 0 {
			return nil
		}

		ids := make([]int64, len(events))
		msgs := make([]kafka.Message, len(events))
		for i, e := range events {
			ids[i] = e.ID
			msgs[i] = toMessage(ctx, e)
		}

		if writeErr = p.writer.WriteMessages(ctx, msgs...); writeErr != nil {
			// Попытка фиксируется, события остаются в outbox до следующего тика
			if err := p.repo.IncrementAttempts(txCtx, ids); err != nil {
				return fmt.Errorf("%w: increment attempts: %v", ErrPublish, err)
			}
			return nil
		}

		if err := p.repo.MarkPublished(txCtx, ids); err != nil {
			return fmt.Errorf("%w: mark published: %v", ErrPublish, err)
		}
		published = events
		return nil
	})

	if err != nil {
		return 0, err
	}
	if writeErr != nil {
		return 0, fmt.Errorf("%w: write to kafka: %v", ErrPublish, writeErr)
	}

	for _, e := range published {
		p.metrics.IncOutboxPublished(string(e.EventType))
	}
	if len(published) > 0 {
		p.logger.Info("Outbox publisher: published %d events", len(published))
	}
	return len(published), nil
}

// toMessage сообщение Kafka из строки outbox
func toMessage(ctx context.Context, e *domain.OutboxEvent) kafka.Message {
	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(e.EventID)},
		{Key: "event_type", Value: []byte(e.EventType)},
		{Key: "aggregate_type", Value: []byte(e.AggregateType)},
		{Key: "aggregate_id", Value: []byte(strconv.FormatInt(e.AggregateID, 10))},
	}
	return kafka.Message{
		Key:     []byte(e.Key),
		Value:   e.Payload,
		Headers: injectTrace(ctx, headers),
		Time:    e.CreatedAt,
	}
}
