package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gopkg.in/gomail.v2"
)

// LogNotifier writes reminders to the structured log.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, r Reminder) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info(r.Message, "task_id", r.Task.ID, "owner_id", r.Task.OwnerID)
	return nil
}

func (LogNotifier) String() string { return "log" }

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails the reminder to the task owner.
type EmailNotifier struct {
	sender mailSender
	from   string
}

func NewEmailNotifier(host string, port int, user, password, from string) *EmailNotifier {
	return &EmailNotifier{
		sender: gomail.NewDialer(host, port, user, password),
		from:   from,
	}
}

func (n *EmailNotifier) Notify(_ context.Context, r Reminder) error {
	to := r.Task.Owner.Email
	if to == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", r.Title)
	m.SetBody("text/plain", r.Message)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reminder email: %w", err)
	}
	return nil
}

func (*EmailNotifier) String() string { return "email" }

type botSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier messages owners who linked a Telegram chat. The bot is
// created on first use.
type TelegramNotifier struct {
	token string

	mu  sync.Mutex
	bot botSender
}

func NewTelegramNotifier(token string) *TelegramNotifier {
	return &TelegramNotifier{token: token}
}

func (n *TelegramNotifier) client() (botSender, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bot != nil {
		return n.bot, nil
	}
	bot, err := tgbotapi.NewBotAPI(n.token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	n.bot = bot
	return bot, nil
}

func (n *TelegramNotifier) Notify(_ context.Context, r Reminder) error {
	chatID, ok := r.Task.Owner.TelegramChat()
	if !ok {
		return nil
	}

	bot, err := n.client()
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, r.Title+"\n"+r.Message)
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}

func (*TelegramNotifier) String() string { return "telegram" }
