package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/xinton/desafio-dev-api-rest/internal/holders/store"
	"github.com/xinton/desafio-dev-api-rest/pkg/rabbitmq"
)

const (
	defaultBatchSize       = 50
	defaultPollInterval    = 1200 * time.Millisecond
	defaultStaleProcessing = 2 * time.Minute
)

// OutboxDispatcher drains the holder_outbox table in the background,
// publishing each claimed row to RabbitMQ. Rows that fail to publish are
// rescheduled with an exponential delay, so delivery is at-least-once.
type OutboxDispatcher struct {
	repo                store.HolderRepository
	rabbitURL           string
	batchSize           int
	pollInterval        time.Duration
	staleProcessingTime time.Duration
	producer            *rabbitmq.EventProducer

	// publish sends one claimed holder event to the broker. It is a field
	// so tests can drive a flush without a live broker.
	publish func(ctx context.Context, message store.OutboxMessage) error
}

// NewOutboxDispatcher creates a dispatcher with the default batching and
// polling parameters.
func NewOutboxDispatcher(repo store.HolderRepository, rabbitURL string) *OutboxDispatcher {
	d := &OutboxDispatcher{
		repo:                repo,
		rabbitURL:           rabbitURL,
		batchSize:           defaultBatchSize,
		pollInterval:        defaultPollInterval,
		staleProcessingTime: defaultStaleProcessing,
	}
	d.publish = d.publishMessage
	return d
}

// Run polls the outbox until ctx is cancelled. It is started by main as a
// supervised goroutine, independent from request serving.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	defer d.closeProducer()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.flushOnce(ctx); err != nil {
				log.Printf("Outbox flush error: %v", err)
			}
		}
	}
}

func (d *OutboxDispatcher) flushOnce(ctx context.Context) error {
	staleAfterSeconds := int(d.staleProcessingTime.Seconds())
	messages, err := d.repo.ClaimOutboxMessages(ctx, d.batchSize, staleAfterSeconds)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	published := 0
	for _, message := range messages {
		if err := d.publish(ctx, message); err != nil {
			retryAfter := retryDelaySeconds(message.Attempts)
			log.Printf("Holder event %d failed on attempt %d, retrying in %ds: %v", message.ID, message.Attempts, retryAfter, err)
			_ = d.repo.MarkOutboxFailed(ctx, message.ID, retryAfter, err.Error())
			continue
		}
		published++
		if err := d.repo.MarkOutboxPublished(ctx, message.ID); err != nil {
			log.Printf("Failed to mark holder event %d as published: %v", message.ID, err)
		}
	}
	if published > 0 {
		log.Printf("Published %d of %d claimed holder event(s)", published, len(messages))
	}
	return nil
}

func (d *OutboxDispatcher) publishMessage(ctx context.Context, message store.OutboxMessage) error {
	if d.producer == nil {
		producer, err := rabbitmq.NewEventProducer(d.rabbitURL)
		if err != nil {
			return err
		}
		d.producer = producer
	}

	var payload interface{}
	if err := json.Unmarshal(message.Payload, &payload); err != nil {
		return err
	}

	if err := d.producer.Publish(ctx, message.Exchange, message.RoutingKey, payload); err != nil {
		d.closeProducer()
		return err
	}
	return nil
}

func (d *OutboxDispatcher) closeProducer() {
	if d.producer != nil {
		d.producer.Close()
		d.producer = nil
	}
}

func retryDelaySeconds(attempt int) int {
	if attempt < 1 {
		return 1
	}
	delay := 1 << min(attempt, 8)
	if delay > 300 {
		return 300
	}
	return delay
}
