// Package mq publishes purchase and transfer notices to RabbitMQ for the
// notification workers (confirmation emails, transfer invites) that run
// outside this service.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	TicketsIssuedQueue     = "tickets.issued.immediate"
	TransferRequestedQueue = "tickets.transfer.requested.immediate"
)

type TicketsIssuedMessage struct {
	PurchaseID  string   `json:"purchase_id"`
	UserID      string   `json:"user_id"`
	EventID     string   `json:"event_id"`
	TicketIDs   []string `json:"ticket_ids"`
	FinalAmount float64  `json:"final_amount"`
	PromoCode   string   `json:"promo_code,omitempty"`
}

type TransferRequestedMessage struct {
	TransferID   string `json:"transfer_id"`
	TicketID     string `json:"ticket_id"`
	FromUserID   string `json:"from_user_id"`
	ToEmail      string `json:"to_email"`
	TransferCode string `json:"transfer_code"`
	ExpiresAt    string `json:"expires_at"`
}

func NewMQConn(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func NewChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func InitQueues(conn *amqp.Connection) error {
	ch, err := NewChannel(conn)
	if err != nil {
		return err
	}
	defer ch.Close()

	for _, queue := range []string{TicketsIssuedQueue, TransferRequestedQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return err
		}
	}
	return nil
}

// Producer publishes notification messages. It satisfies the services'
// Notifier interface so tests can swap it out.
type Producer struct {
	ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *Producer {
	return &Producer{ch: ch}
}

func (p *Producer) send(ctx context.Context, queueName string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = p.ch.PublishWithContext(
		ctx,
		"",
		queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to queue %s: %w", queueName, err)
	}
	return nil
}

func (p *Producer) TicketsIssued(ctx context.Context, msg TicketsIssuedMessage) error {
	return p.send(ctx, TicketsIssuedQueue, msg)
}

func (p *Producer) TransferRequested(ctx context.Context, msg TransferRequestedMessage) error {
	return p.send(ctx, TransferRequestedQueue, msg)
}
