package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/yourusername/hottakes-api/pkg/logger"
)

// ReminderEmail - данные письма-напоминания
type ReminderEmail struct {
	To       string
	Nickname string
	GameDay  int
	LockTime *time.Time
	Link     string
}

// EmailService отправляет транзакционные письма.
type EmailService interface {
	SendReminder(ctx context.Context, msg ReminderEmail) error
	SendPasswordReset(ctx context.Context, to, nickname, resetLink string) error
}

// NoopEmailService используется, когда отправка писем отключена.
type NoopEmailService struct {
	log *logger.Logger
}

// NewNoopEmailService создает сервис, который только пишет в лог
func NewNoopEmailService(log *logger.Logger) *NoopEmailService {
	return &NoopEmailService{log: log.Named("EmailService")}
}

func (s *NoopEmailService) SendReminder(ctx context.Context, msg ReminderEmail) error {
	s.log.Info("noop: напоминание", "to", msg.To, "game_day", msg.GameDay)
	return nil
}

func (s *NoopEmailService) SendPasswordReset(ctx context.Context, to, nickname, resetLink string) error {
	s.log.Info("noop: сброс пароля", "to", to, "nickname", nickname)
	return nil
}

// ResendEmailService отправляет письма через Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
	log    *logger.Logger
}

func NewResendEmailService(apiKey, from string, log *logger.Logger) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
		log:    log.Named("EmailService"),
	}, nil
}

func (s *ResendEmailService) SendReminder(ctx context.Context, msg ReminderEmail) error {
	if msg.To == "" {
		return fmt.Errorf("recipient is required")
	}
	subject, text, body := reminderContent(msg)
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: subject,
		Text:    text,
		Html:    body,
	}
	// один ключ на (день, адрес): повтор джобы не дублирует письмо
	key := fmt.Sprintf("reminder-%d-%s", msg.GameDay, strings.ToLower(msg.To))
	return s.send(ctx, params, key)
}

func (s *ResendEmailService) SendPasswordReset(ctx context.Context, to, nickname, resetLink string) error {
	if to == "" || resetLink == "" {
		return fmt.Errorf("recipient and reset link are required")
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: "Reset your hottakes password",
		Text: fmt.Sprintf("Hi %s,\n\nUse this link to choose a new password: %s\nThe link expires in 1 hour.",
			nickname, resetLink),
		Html: fmt.Sprintf("<p>Hi %s,</p><p><a href=\"%s\">Choose a new password</a></p><p>The link expires in 1 hour.</p>",
			html.EscapeString(nickname), html.EscapeString(resetLink)),
	}
	return s.send(ctx, params, "")
}

func (s *ResendEmailService) send(ctx context.Context, params *resend.SendEmailRequest, idempotencyKey string) error {
	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			s.log.Warn("Повтор отправки письма", "attempt", attempt+1, "wait", wait.String(), "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func reminderContent(msg ReminderEmail) (subject, text, body string) {
	subject = fmt.Sprintf("Game day %d is open: lock in your hottakes", msg.GameDay)
	deadline := ""
	if msg.LockTime != nil {
		deadline = fmt.Sprintf(" Picks lock at %s.", msg.LockTime.UTC().Format("Jan 2, 15:04 MST"))
	}
	text = fmt.Sprintf("Hi %s,\n\nYou haven't submitted your picks for game day %d yet.%s\n%s",
		msg.Nickname, msg.GameDay, deadline, msg.Link)
	body = fmt.Sprintf("<p>Hi %s,</p><p>You haven't submitted your picks for game day %d yet.%s</p><p><a href=\"%s\">Make your picks</a></p>",
		html.EscapeString(msg.Nickname), msg.GameDay, html.EscapeString(deadline), html.EscapeString(msg.Link))
	return subject, text, body
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
