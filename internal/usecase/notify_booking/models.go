package notify_booking

// Причины, по которым уведомление не отправлялось
const (
	SkipNoSubscription  = "no_subscription"
	SkipDisabled        = "disabled"
	SkipAlreadySent     = "already_sent"
	SkipChatUnavailable = "chat_unavailable"
)

// Request событие бронирования для уведомления владельца
type Request struct {
	EventType string
	BookingID int64
}

// Response результат обработки события
type Response struct {
	Sent       bool
	SkipReason string
}
