// Package mailer hands outgoing account mails to the delivery worker.
// Rendering and SMTP delivery happen on the consumer side of the queue.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const EmailQueue = "emails"

type Mailer interface {
	SendPasswordReset(ctx context.Context, to string, resetLink string) error
	Close() error
}

type EmailMessage struct {
	Type      string    `json:"type"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewPasswordResetMessage(to string, resetLink string) EmailMessage {
	return EmailMessage{
		Type:      "password_reset",
		To:        to,
		Subject:   "Password Reset",
		Text:      fmt.Sprintf("Your password reset link is: %s", resetLink),
		CreatedAt: time.Now().UTC(),
	}
}

//------------------------------------------
//------------------------------------------

type AmqpMailer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mux     sync.Mutex
}

func NewAmqpMailer(url string) (*AmqpMailer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err = ch.QueueDeclare(EmailQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &AmqpMailer{conn: conn, channel: ch}, nil
}

func (m *AmqpMailer) SendPasswordReset(ctx context.Context, to string, resetLink string) error {
	body, err := json.Marshal(NewPasswordResetMessage(to, resetLink))
	if err != nil {
		return err
	}

	m.mux.Lock()
	defer m.mux.Unlock()
	return m.channel.PublishWithContext(ctx, "", EmailQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (m *AmqpMailer) Close() error {
	if err := m.channel.Close(); err != nil {
		_ = m.conn.Close()
		return err
	}
	return m.conn.Close()
}

//------------------------------------------
//------------------------------------------

// LogMailer only logs the message, used when no broker is configured.
type LogMailer struct{}

func (LogMailer) SendPasswordReset(_ context.Context, to string, resetLink string) error {
	log.Info().Str("to", to).Str("link", resetLink).Msg("password reset mail (no broker configured)")
	return nil
}

func (LogMailer) Close() error {
	return nil
}
