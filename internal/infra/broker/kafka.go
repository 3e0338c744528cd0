package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/pkg/tracing"
)

// BookingTopics топики событий бронирований (топик = тип события)
var BookingTopics = []string{domain.EventBookingCreated, domain.EventBookingCancelled}

const kafkaReadBackoff = time.Second

// KafkaPublisher публикует события в Kafka.
// Ключ сообщения - ID агрегата, поэтому события одного бронирования упорядочены.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, msg Message) error {
	if err := p.writer.WriteMessages(ctx, toKafkaMessage(msg)); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPublish, msg.EventID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toKafkaMessage(msg Message) kafka.Message {
	headers := []kafka.Header{
		{Key: HeaderEventID, Value: []byte(msg.EventID)},
		{Key: HeaderEventType, Value: []byte(msg.EventType)},
	}
	if msg.Traceparent != "" {
		headers = append(headers, kafka.Header{Key: HeaderTraceparent, Value: []byte(msg.Traceparent)})
	}

	return kafka.Message{
		Topic:   msg.EventType,
		Key:     []byte(msg.AggregateID),
		Value:   msg.Payload,
		Headers: headers,
	}
}

func fromKafkaMessage(km kafka.Message) Message {
	msg := Message{
		EventID:     headerValue(km.Headers, HeaderEventID),
		EventType:   headerValue(km.Headers, HeaderEventType),
		AggregateID: string(km.Key),
		Payload:     km.Value,
		Traceparent: headerValue(km.Headers, HeaderTraceparent),
	}
	if msg.EventType == "" {
		msg.EventType = km.Topic
	}
	return msg
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// KafkaConsumer читает события бронирований группой потребителей
type KafkaConsumer struct {
	reader  *kafka.Reader
	handler Handler
	logger  Logger
}

func NewKafkaConsumer(brokers []string, groupID string, handler Handler, logger Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			GroupTopics: BookingTopics,
			MinBytes:    1,
			MaxBytes:    10e6,
		}),
		handler: handler,
		logger:  logger,
	}
}

// Run читает до отмены ctx. Смещение фиксируется после обработки,
// ошибка обработчика логируется и сообщение не повторяется.
func (c *KafkaConsumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("KafkaConsumer: read error: %v", err)
			time.Sleep(kafkaReadBackoff)
			continue
		}

		msg := fromKafkaMessage(km)
		c.handle(ctx, msg, km.Topic)

		if err := c.reader.CommitMessages(ctx, km); err != nil && ctx.Err() == nil {
			c.logger.Error("KafkaConsumer: failed to commit offset of event_id=%s: %v", msg.EventID, err)
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, msg Message, topic string) {
	msgCtx := tracing.ContextWithTraceparent(ctx, msg.Traceparent)
	spanCtx, span := otel.Tracer("kafka").Start(msgCtx, "kafka.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("messaging.message_id", msg.EventID),
		),
	)
	defer span.End()

	if err := c.handler(spanCtx, msg); err != nil {
		span.RecordError(err)
		c.logger.Error("KafkaConsumer: handler failed for event_id=%s: %v", msg.EventID, err)
	}
}
