package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SalonBookingService/pkg/tracing"
)

const (
	rabbitPrefetch       = 50
	rabbitMaxBackoff     = 30 * time.Second
	rabbitInitialBackoff = time.Second
)

// RabbitPublisher публикует события в durable очередь через default exchange.
// Соединение открывается лениво и переоткрывается после обрыва.
type RabbitPublisher struct {
	url   string
	queue string

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

func NewRabbitPublisher(url, queue string) *RabbitPublisher {
	return &RabbitPublisher{url: url, queue: queue}
}

func (p *RabbitPublisher) Publish(ctx context.Context, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	ch, err := p.channel()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublish, msg.EventID, err)
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, toPublishing(msg))
	if err != nil {
		// канал после ошибки непригоден, откроем заново при следующей публикации
		p.reset()
		return fmt.Errorf("%w: %s: %v", ErrPublish, msg.EventID, err)
	}
	return nil
}

func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.reset()
	return nil
}

// channel вызывается под p.mu
func (p *RabbitPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}
	if _, err := declareQueue(ch, p.queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *RabbitPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func declareQueue(ch *amqp.Channel, queue string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}

func toPublishing(msg Message) amqp.Publishing {
	headers := amqp.Table{
		HeaderEventID:   msg.EventID,
		HeaderEventType: msg.EventType,
	}
	if msg.Traceparent != "" {
		headers[HeaderTraceparent] = msg.Traceparent
	}

	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     msg.EventID,
		Type:          msg.EventType,
		CorrelationId: msg.AggregateID,
		Timestamp:     time.Now().UTC(),
		Headers:       headers,
		Body:          msg.Payload,
	}
}

func fromDelivery(d amqp.Delivery) Message {
	msg := Message{
		EventID:     d.MessageId,
		EventType:   d.Type,
		AggregateID: d.CorrelationId,
		Payload:     d.Body,
	}
	if v, ok := d.Headers[HeaderTraceparent].(string); ok {
		msg.Traceparent = v
	}
	if msg.EventID == "" {
		if v, ok := d.Headers[HeaderEventID].(string); ok {
			msg.EventID = v
		}
	}
	if msg.EventType == "" {
		if v, ok := d.Headers[HeaderEventType].(string); ok {
			msg.EventType = v
		}
	}
	return msg
}

// RabbitConsumer читает очередь событий с переподключением
type RabbitConsumer struct {
	url     string
	queue   string
	handler Handler
	logger  Logger
}

func NewRabbitConsumer(url, queue string, handler Handler, logger Logger) *RabbitConsumer {
	return &RabbitConsumer{url: url, queue: queue, handler: handler, logger: logger}
}

// Run переподключается с экспоненциальной задержкой до отмены ctx
func (c *RabbitConsumer) Run(ctx context.Context) {
	backoff := rabbitInitialBackoff
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Error("RabbitConsumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < rabbitMaxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = rabbitInitialBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("RabbitConsumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, rabbitInitialBackoff) {
			return
		}
	}
}

func (c *RabbitConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(rabbitPrefetch, 0, false); err != nil {
		c.logger.Warn("RabbitConsumer: set QoS failed: %v", err)
	}
	if _, err := declareQueue(ch, c.queue); err != nil {
		return err
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range deliveries {
		msg := fromDelivery(d)
		if err := c.handle(ctx, msg); err != nil {
			// без requeue, чтобы не зациклиться на одном сообщении
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *RabbitConsumer) handle(ctx context.Context, msg Message) error {
	msgCtx := tracing.ContextWithTraceparent(ctx, msg.Traceparent)
	spanCtx, span := otel.Tracer("rabbitmq").Start(msgCtx, "rabbitmq.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination", c.queue),
			attribute.String("messaging.message_id", msg.EventID),
		),
	)
	defer span.End()

	if err := c.handler(spanCtx, msg); err != nil {
		span.RecordError(err)
		c.logger.Error("RabbitConsumer: handler failed for event_id=%s: %v", msg.EventID, err)
		return err
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
