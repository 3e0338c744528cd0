package outbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/infra/broker"
	"github.com/m04kA/SalonBookingService/internal/testutil/memstore"
	"github.com/m04kA/SalonBookingService/pkg/logger"
)

type recordingPublisher struct {
	published []broker.Message
	failFor   map[string]error
}

func (p *recordingPublisher) Publish(_ context.Context, msg broker.Message) error {
	if err, ok := p.failFor[msg.EventID]; ok {
		return err
	}
	p.published = append(p.published, msg)
	return nil
}

func insertEvent(t *testing.T, store *memstore.Store, eventID string) {
	t.Helper()
	err := store.Outbox().Insert(context.Background(), &domain.OutboxEvent{
		EventID:       eventID,
		AggregateType: domain.AggregateBooking,
		AggregateID:   "1",
		EventType:     domain.EventBookingCreated,
		Payload:       []byte(`{"bookingId":1}`),
	})
	require.NoError(t, err)
}

func TestRelay_RunOnce(t *testing.T) {
	store := memstore.New()
	insertEvent(t, store, "e1")
	insertEvent(t, store, "e2")
	insertEvent(t, store, "e3")

	publisher := &recordingPublisher{failFor: map[string]error{"e2": errors.New("broker down")}}
	relay := NewRelay(store.Outbox(), publisher, store.TxManager(), nil, logger.NewNop(), Config{BatchSize: 10, MaxAttempts: 2})

	published, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, published)
	require.Len(t, publisher.published, 2)
	assert.Equal(t, "e1", publisher.published[0].EventID)
	assert.Equal(t, "e3", publisher.published[1].EventID)

	events := store.AllOutbox()
	require.Len(t, events, 3)
	assert.NotNil(t, events[0].PublishedAt)
	assert.Nil(t, events[1].PublishedAt)
	assert.Equal(t, 1, events[1].Attempts)
	require.NotNil(t, events[1].LastError)
	assert.NotNil(t, events[2].PublishedAt)

	// повтор: e2 снова падает и исчерпывает попытки
	published, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, published)

	// после MaxAttempts событие больше не выбирается
	delete(publisher.failFor, "e2")
	published, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, published)
	assert.Equal(t, 2, store.AllOutbox()[1].Attempts)
}

func TestRelay_RunOnce_Empty(t *testing.T) {
	store := memstore.New()
	relay := NewRelay(store.Outbox(), &recordingPublisher{}, store.TxManager(), nil, logger.NewNop(), Config{})

	published, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, published)
}

func TestRelay_RunOnce_BeginFailure(t *testing.T) {
	store := memstore.New()
	insertEvent(t, store, "e1")
	store.FailOnce("tx.Begin", errors.New("too many connections"))

	publisher := &recordingPublisher{}
	relay := NewRelay(store.Outbox(), publisher, store.TxManager(), nil, logger.NewNop(), Config{})

	_, err := relay.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Empty(t, publisher.published)
}

// hookPublisher вызывает hook перед записью сообщения
type hookPublisher struct {
	recordingPublisher
	hook func(ctx context.Context, msg broker.Message) error
}

func (p *hookPublisher) Publish(ctx context.Context, msg broker.Message) error {
	if p.hook != nil {
		if err := p.hook(ctx, msg); err != nil {
			return err
		}
	}
	return p.recordingPublisher.Publish(ctx, msg)
}

func TestRelay_RunOnce_ClaimedBatchIsInvisibleToOtherRelays(t *testing.T) {
	store := memstore.New()
	insertEvent(t, store, "e1")
	insertEvent(t, store, "e2")

	other := NewRelay(store.Outbox(), &recordingPublisher{}, store.TxManager(), nil, logger.NewNop(), Config{})

	var otherPublished []int
	publisher := &hookPublisher{hook: func(ctx context.Context, _ broker.Message) error {
		// второй экземпляр опрашивает outbox, пока первый отправляет пачку
		n, err := other.RunOnce(ctx)
		require.NoError(t, err)
		otherPublished = append(otherPublished, n)
		return nil
	}}
	relay := NewRelay(store.Outbox(), publisher, store.TxManager(), nil, logger.NewNop(), Config{})

	published, err := relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, published)
	assert.Equal(t, []int{0, 0}, otherPublished)
	for _, ev := range store.AllOutbox() {
		assert.NotNil(t, ev.PublishedAt)
	}
}

func TestRelay_RunOnce_MarkFailureKeepsEarlierDeliveries(t *testing.T) {
	store := memstore.New()
	insertEvent(t, store, "e1")
	insertEvent(t, store, "e2")

	publisher := &hookPublisher{hook: func(_ context.Context, msg broker.Message) error {
		if msg.EventID == "e2" {
			store.FailOnce("outbox.MarkPublished", errors.New("connection reset"))
		}
		return nil
	}}
	relay := NewRelay(store.Outbox(), publisher, store.TxManager(), nil, logger.NewNop(), Config{})

	published, err := relay.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, published)

	events := store.AllOutbox()
	require.Len(t, events, 2)
	assert.NotNil(t, events[0].PublishedAt)
	assert.Nil(t, events[1].PublishedAt)
	assert.NotNil(t, events[1].LockedUntil)

	// e1 не отправляется повторно, e2 ждет истечения lease
	published, err = relay.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, published)
	require.Len(t, publisher.published, 2)
	assert.Equal(t, "e1", publisher.published[0].EventID)
	assert.Equal(t, "e2", publisher.published[1].EventID)
}

func TestRelay_RunOnce_ClaimFailurePublishesNothing(t *testing.T) {
	store := memstore.New()
	insertEvent(t, store, "e1")
	store.FailOnce("outbox.Claim", errors.New("serialization failure"))

	publisher := &recordingPublisher{}
	relay := NewRelay(store.Outbox(), publisher, store.TxManager(), nil, logger.NewNop(), Config{})

	_, err := relay.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Empty(t, publisher.published)
	assert.Nil(t, store.AllOutbox()[0].LockedUntil)
}
