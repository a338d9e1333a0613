package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends ticket events to RabbitMQ. Publishing is best effort:
// every error is logged and returned so callers can ignore broker outages
// without interrupting the booking flow. A fresh connection is dialed per
// publish; the event volume here (one per reservation or payment) does
// not justify connection management.
type Publisher struct {
	url string
}

// NewPublisher returns a Publisher for the given AMQP URL. An empty URL
// yields a disabled publisher whose methods are no-ops.
func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// Publish marshals the event and delivers it to the named queue,
// declaring it durable first. Messages are persistent so they survive
// broker restarts.
func (p *Publisher) Publish(ctx context.Context, queueName string, ev TicketEvent) error {
	if p == nil || p.url == "" {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}

// TicketReserved publishes a reservation event to the ticket.reserved queue.
func (p *Publisher) TicketReserved(ctx context.Context, ev TicketEvent) {
	ev.Kind = "reserved"
	_ = p.Publish(ctx, QueueTicketReserved, ev)
}

// TicketPaid publishes a payment event to the ticket.paid queue.
func (p *Publisher) TicketPaid(ctx context.Context, ev TicketEvent) {
	ev.Kind = "paid"
	_ = p.Publish(ctx, QueueTicketPaid, ev)
}
