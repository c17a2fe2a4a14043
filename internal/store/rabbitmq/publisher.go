package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher enqueues guest-to-account migration jobs.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// MigrationMessage is the queue payload. The job row is authoritative; the
// message carries just enough to locate it and to log usefully on the
// consumer side.
type MigrationMessage struct {
	JobID      string    `json:"job_id"`
	UserID     uint64    `json:"user_id"`
	DeviceID   string    `json:"device_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// DeclareTopology declares the migration queues: the main queue dead-letters
// rejected deliveries to "<queue>.dlq", and "<queue>.retry" dead-letters
// back onto the main queue. Publisher and worker both call this; declaration
// is idempotent as long as the arguments match.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	if _, err := ch.QueueDeclare(
		queue+".dlq",
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(
		queue+".retry",
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue,
		},
	); err != nil {
		return err
	}

	_, err := ch.QueueDeclare(
		queue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue + ".dlq",
		},
	)
	return err
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishMigration enqueues one migration job as a persistent message.
func (p *Publisher) PublishMigration(ctx context.Context, jobID string, userID uint64, deviceID string) error {
	body, err := json.Marshal(MigrationMessage{
		JobID:      jobID,
		UserID:     userID,
		DeviceID:   deviceID,
		EnqueuedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}
