package telegram_command

// Команды бота
const (
	CommandStart   = "/start"
	CommandID      = "/id"
	CommandStatus  = "/status"
	CommandCode    = "code"
	CommandUnknown = "unknown"
)

// Request входящее сообщение из чата
type Request struct {
	ChatID int64
	Text   string
}

// Response распознанная команда. Пустая команда - сообщение без текста, ответ не отправлялся.
type Response struct {
	Command string
	Replied bool
}
