package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"github.com/yannsunn/amazon-fba-image-optimizer/internal/models"
	"go.uber.org/zap"
)

const queueName = "batch_completed"

// batchEvent is the message published for every finished batch.
type batchEvent struct {
	BatchID     string    `json:"batch_id"`
	TotalImages int       `json:"total_images"`
	Processed   int       `json:"processed"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
	Message     string    `json:"message"`
}

// Publisher announces completed batches on a message queue. It is passed
// into the orchestrator explicitly; when the broker is unavailable the
// service runs without one.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

func NewPublisher(rabbitmqURL string, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Publisher{
		conn:    conn,
		channel: channel,
		logger:  logger,
	}, nil
}

// BatchCompleted publishes a completion event. Delivery is best effort:
// failures are logged, never surfaced to the batch caller.
func (p *Publisher) BatchCompleted(ctx context.Context, result *models.BatchResult) {
	event := batchEvent{
		BatchID:     result.BatchID,
		TotalImages: result.TotalImages,
		Processed:   result.Processed,
		Failed:      result.Failed,
		ProcessedAt: result.ProcessedAt,
		Message:     result.Message,
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("Failed to marshal batch event", zap.Error(err))
		return
	}

	err = p.channel.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.logger.Warn("Failed to publish batch event",
			zap.String("batch_id", result.BatchID),
			zap.Error(err))
		return
	}

	p.logger.Info("Batch event published", zap.String("batch_id", result.BatchID))
}

// HealthCheck reports broker connectivity.
func (p *Publisher) HealthCheck() string {
	if p.conn == nil || p.conn.IsClosed() {
		return "unhealthy: connection closed"
	}
	if p.channel == nil {
		return "unhealthy: channel not available"
	}
	return "healthy"
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
