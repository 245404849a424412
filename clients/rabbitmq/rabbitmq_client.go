package rabbitmq_client

import (
	"encoding/json"
	"fmt"

	"stockanalyzer/config"
	"stockanalyzer/types"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Publisher mirrors the Kafka producer on the RabbitMQ side: same event
// payload, default exchange, one durable queue. Nil means disabled.
type Publisher struct {
	connection *amqp.Connection
	channel    *amqp.Channel
	queue      amqp.Queue
}

func NewPublisher(cfg config.Rabbit) *Publisher {
	if cfg.Server == "" {
		zap.L().Info("RabbitMQ not configured, event publishing disabled")
		return nil
	}

	conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.User, cfg.Pass, cfg.Server, cfg.Port))
	if err != nil {
		zap.L().Error("RabbitMQ initialization failed: ", zap.Any("error", err.Error()))
		return nil
	}

	ch, err := conn.Channel()
	if err != nil {
		zap.L().Error("RabbitMQ - Failed to open a channel: ", zap.Any("error", err.Error()))
		conn.Close()
		return nil
	}

	// Declare the queue up front so publishing never races its creation.
	q, err := ch.QueueDeclare(
		cfg.Queue, // Name of the queue
		true,      // Durable
		false,     // Delete when unused
		false,     // Exclusive
		false,     // No-wait
		nil,       // Arguments
	)
	if err != nil {
		zap.L().Error("RabbitMQ - Failed to declare a queue: ", zap.Any("error", err.Error()))
		ch.Close()
		conn.Close()
		return nil
	}

	zap.L().Info("Connected to RabbitMQ.")
	return &Publisher{connection: conn, channel: ch, queue: q}
}

func (p *Publisher) SendMessage(event types.AnalyzerEvent) {
	if p == nil {
		return
	}
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("Failed to marshal analyzer event", zap.Error(err))
		return
	}

	zap.L().Sugar().Infof("Sending message to rabbitmq: %s", message)

	err = p.channel.Publish(
		"",           // Exchange (empty means default)
		p.queue.Name, // Routing key (queue name in this case)
		false,        // Mandatory
		false,        // Immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        message,
		})
	if err != nil {
		zap.L().Error("Error publishing message to rabbitmq: ", zap.Any("error", err.Error()))
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.channel.Close()
	p.connection.Close()
}
