package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"daily-fortune/internal/domain"
)

// RabbitAggregateQueue реализует очередь задач агрегации через AMQP
// с явным подтверждением доставки.
type RabbitAggregateQueue struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	queue      string
	deliveries <-chan amqp.Delivery
}

var _ domain.AggregateQueue = (*RabbitAggregateQueue)(nil)

// NewRabbitAggregateQueue подключается к брокеру и объявляет долговечную очередь.
func NewRabbitAggregateQueue(amqpURL, queue string) (*RabbitAggregateQueue, error) {
	if amqpURL == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		return nil, errors.New("queue name is empty")
	}
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &RabbitAggregateQueue{conn: conn, ch: ch, queue: queue}, nil
}

// Enqueue публикует задачу в очередь.
func (q *RabbitAggregateQueue) Enqueue(ctx context.Context, job domain.AggregateJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
}

// Receive читает задачу из очереди. Ack(false) возвращает задачу в очередь.
func (q *RabbitAggregateQueue) Receive(ctx context.Context) (domain.AggregateJob, domain.AggregateAckFunc, error) {
	noopAck := domain.AggregateAckFunc(func(bool) error { return nil })
	if q.deliveries == nil {
		deliveries, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
		if err != nil {
			return domain.AggregateJob{}, noopAck, fmt.Errorf("consume: %w", err)
		}
		q.deliveries = deliveries
	}

	select {
	case <-ctx.Done():
		return domain.AggregateJob{}, noopAck, ctx.Err()
	case delivery, ok := <-q.deliveries:
		if !ok {
			return domain.AggregateJob{}, noopAck, errors.New("amqp queue: канал доставки закрыт")
		}
		var job domain.AggregateJob
		if err := json.Unmarshal(delivery.Body, &job); err != nil {
			_ = delivery.Nack(false, false)
			return domain.AggregateJob{}, noopAck, fmt.Errorf("decode job: %w", err)
		}
		ack := domain.AggregateAckFunc(func(success bool) error {
			if success {
				return delivery.Ack(false)
			}
			return delivery.Nack(false, true)
		})
		return job, ack, nil
	}
}

// Close закрывает канал и подключение.
func (q *RabbitAggregateQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		_ = q.conn.Close()
		return err
	}
	return q.conn.Close()
}
