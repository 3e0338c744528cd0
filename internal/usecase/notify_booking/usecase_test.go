package notify_booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SalonBookingService/internal/domain"
	"github.com/m04kA/SalonBookingService/internal/integrations/telegram"
	"github.com/m04kA/SalonBookingService/internal/testutil/memstore"
	"github.com/m04kA/SalonBookingService/pkg/logger"
	"github.com/m04kA/SalonBookingService/pkg/metrics"
	"github.com/m04kA/SalonBookingService/pkg/ptr"
)

type sentMessage struct {
	chatID string
	text   string
}

type fakeMessenger struct {
	sent []sentMessage
	err  error
}

func (m *fakeMessenger) SendMessage(_ context.Context, chatID, text string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

type fixture struct {
	store     *memstore.Store
	seed      memstore.Seed
	messenger *fakeMessenger
	metrics   *metrics.Metrics
	uc        *UseCase
	booking   *domain.Booking
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	seed := store.SeedSalon()
	messenger := &fakeMessenger{}
	m := metrics.NewWithRegisterer("test", prometheus.NewRegistry())

	booking, err := store.Bookings().Create(context.Background(), &domain.Booking{
		SalonID:         seed.Salon.ID,
		MasterID:        seed.Anna.ID,
		ServiceID:       seed.Haircut.ID,
		ServiceIDs:      []int64{seed.Haircut.ID, seed.Coloring.ID},
		BookingDate:     memstore.Monday(),
		StartTime:       "14:00",
		DurationMinutes: 90,
		Price:           1700,
		ClientName:      "<script>Ірина</script>",
		ClientPhone:     "+380671234567",
		Status:          domain.StatusConfirmed,
	})
	require.NoError(t, err)

	uc := NewUseCase(store.Bookings(), store.Subscriptions(), messenger, m, logger.NewNop())
	return &fixture{store: store, seed: seed, messenger: messenger, metrics: m, uc: uc, booking: booking}
}

func (f *fixture) subscribe(enabled bool) {
	f.store.AddSubscription(domain.OwnerSubscription{
		OwnerID:              f.seed.Salon.OwnerID,
		Email:                "owner@lokon.ua",
		TelegramChatID:       ptr.Ptr("555"),
		NotificationsEnabled: enabled,
	})
}

func TestExecute_CreatedSendsAndMarks(t *testing.T) {
	f := newFixture(t)
	f.subscribe(true)

	resp, err := f.uc.Execute(context.Background(), &Request{EventType: domain.EventBookingCreated, BookingID: f.booking.ID})
	require.NoError(t, err)
	assert.True(t, resp.Sent)

	require.Len(t, f.messenger.sent, 1)
	msg := f.messenger.sent[0]
	assert.Equal(t, "555", msg.chatID)
	assert.Contains(t, msg.text, "Нове бронювання!")
	assert.Contains(t, msg.text, "Стрижка, Окрашування")
	assert.Contains(t, msg.text, "понеділок, 2 червня")
	assert.Contains(t, msg.text, "1700 ₴")
	assert.Contains(t, msg.text, "&lt;script&gt;")
	assert.NotContains(t, msg.text, "<script>")

	stored, err := f.store.Bookings().GetByID(context.Background(), f.booking.ID)
	require.NoError(t, err)
	assert.True(t, stored.NotificationSent)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Notifications.WithLabelValues("test", metrics.ResultSent)))

	// повторная доставка того же события не дублирует сообщение
	resp, err = f.uc.Execute(context.Background(), &Request{EventType: domain.EventBookingCreated, BookingID: f.booking.ID})
	require.NoError(t, err)
	assert.Equal(t, SkipAlreadySent, resp.SkipReason)
	assert.Len(t, f.messenger.sent, 1)
}

func TestExecute_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.subscribe(true)

	resp, err := f.uc.Execute(context.Background(), &Request{EventType: domain.EventBookingCancelled, BookingID: f.booking.ID})
	require.NoError(t, err)
	assert.True(t, resp.Sent)
	require.Len(t, f.messenger.sent, 1)
	assert.Contains(t, f.messenger.sent[0].text, "Бронювання скасовано")
}

func TestExecute_Skips(t *testing.T) {
	t.Run("no subscription", func(t *testing.T) {
		f := newFixture(t)
		resp, err := f.uc.Execute(context.Background(), &Request{EventType: domain.EventBookingCreated, BookingID: f.booking.ID})
		require.NoError(t, err)
		assert.Equal(t, SkipNoSubscription, resp.SkipReason)
		assert.Empty(t, f.messenger.sent)
	})

	t.Run("notifications disabled", func(t *testing.T) {
		f := newFixture(t)
		f.subscribe(false)
		resp, err := f.uc.Execute(context.Background(), &Request{EventType: domain.EventBookingCreated, BookingID: f.booking.ID})
		require.NoError(t, err)
		assert.Equal(t, SkipDisabled, resp.SkipReason)
	})

	t.Run("bot blocked", func(t *testing.T) {
		f := newFixture(t)
		f.subscribe(true)
		f.messenger.err = fmt.Errorf("%w: Forbidden", telegram.ErrChatNotFound)
		resp, err := f.uc.Execute(context.Background(), &Request{EventType: domain.EventBookingCreated, BookingID: f.booking.ID})
		require.NoError(t, err)
		assert.Equal(t, SkipChatUnavailable, resp.SkipReason)

		stored, err := f.store.Bookings().GetByID(context.Background(), f.booking.ID)
		require.NoError(t, err)
		assert.False(t, stored.NotificationSent)
	})
}

func TestExecute_Errors(t *testing.T) {
	f := newFixture(t)
	f.subscribe(true)

	_, err := f.uc.Execute(context.Background(), &Request{EventType: domain.EventBookingCreated, BookingID: 9999})
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{EventType: "booking.moved.v1", BookingID: f.booking.ID})
	assert.ErrorIs(t, err, ErrUnknownEvent)

	f.messenger.err = errors.New("i/o timeout")
	_, err = f.uc.Execute(context.Background(), &Request{EventType: domain.EventBookingCreated, BookingID: f.booking.ID})
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Notifications.WithLabelValues("test", metrics.ResultError)))
}
