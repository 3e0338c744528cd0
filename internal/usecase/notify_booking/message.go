package notify_booking

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/m04kA/SalonBookingService/internal/domain"
)

// родительный падеж для "2 червня"
var monthNames = [12]string{
	"січня", "лютого", "березня", "квітня", "травня", "червня",
	"липня", "серпня", "вересня", "жовтня", "листопада", "грудня",
}

func formatDate(date time.Time) string {
	day := strings.ToLower(domain.DefaultWeekdayNames[date.Weekday()])
	return fmt.Sprintf("%s, %d %s", day, date.Day(), monthNames[date.Month()-1])
}

// formatCreated сообщение о новом бронировании. Пользовательские поля экранируются.
func formatCreated(d *domain.BookingDetails) string {
	b := d.Booking
	var sb strings.Builder

	sb.WriteString("🔔 <b>Нове бронювання!</b>\n\n")
	fmt.Fprintf(&sb, "📍 <b>%s</b>\n\n", html.EscapeString(d.SalonName))
	fmt.Fprintf(&sb, "👤 <b>Клієнт:</b> %s\n", html.EscapeString(b.ClientName))
	fmt.Fprintf(&sb, "📞 <b>Телефон:</b> %s\n\n", html.EscapeString(b.ClientPhone))
	fmt.Fprintf(&sb, "💇 <b>Послуга:</b> %s\n", html.EscapeString(strings.Join(d.ServiceNames, ", ")))
	if d.MasterName != "" {
		fmt.Fprintf(&sb, "👨‍💼 <b>Майстер:</b> %s\n", html.EscapeString(d.MasterName))
	}
	fmt.Fprintf(&sb, "\n📅 <b>Дата:</b> %s\n", formatDate(b.BookingDate))
	fmt.Fprintf(&sb, "⏰ <b>Час:</b> %s\n", b.StartTime)
	fmt.Fprintf(&sb, "⏱ <b>Тривалість:</b> %d хв\n", b.DurationMinutes)
	fmt.Fprintf(&sb, "💰 <b>Вартість:</b> %s ₴\n", formatPrice(b.Price))
	if b.Notes != nil && *b.Notes != "" {
		fmt.Fprintf(&sb, "📝 <b>Коментар:</b> %s\n", html.EscapeString(*b.Notes))
	}
	sb.WriteString("\n<i>Перегляньте деталі в панелі управління</i>")

	return sb.String()
}

func formatCancelled(d *domain.BookingDetails) string {
	b := d.Booking
	var sb strings.Builder

	sb.WriteString("❌ <b>Бронювання скасовано</b>\n\n")
	fmt.Fprintf(&sb, "📍 <b>%s</b>\n\n", html.EscapeString(d.SalonName))
	fmt.Fprintf(&sb, "👤 <b>Клієнт:</b> %s\n", html.EscapeString(b.ClientName))
	fmt.Fprintf(&sb, "💇 <b>Послуга:</b> %s\n", html.EscapeString(strings.Join(d.ServiceNames, ", ")))
	fmt.Fprintf(&sb, "📅 <b>Дата:</b> %s\n", formatDate(b.BookingDate))
	fmt.Fprintf(&sb, "⏰ <b>Час:</b> %s", b.StartTime)

	return sb.String()
}

func formatPrice(price float64) string {
	if price == float64(int64(price)) {
		return fmt.Sprintf("%d", int64(price))
	}
	return fmt.Sprintf("%.2f", price)
}
