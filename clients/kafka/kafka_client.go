package kafka_client

import (
	"encoding/json"

	"stockanalyzer/config"
	"stockanalyzer/types"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

// Producer publishes analyzer events to a single Kafka topic. Like the
// cache, a nil Producer is a working no-op so Kafka stays optional.
type Producer struct {
	producer *kafka.Producer
	topic    string
}

func NewProducer(cfg config.Kafka) *Producer {
	if cfg.BootstrapServers == "" {
		zap.L().Info("Kafka not configured, event publishing disabled")
		return nil
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.BootstrapServers,
		"client.id":         "stockanalyzer",
		"acks":              "all",
	})
	if err != nil {
		zap.L().Error("Kafka Producer initialization failed: ", zap.Any("error", err.Error()))
		return nil
	}

	// Delivery report handler for produced messages
	go func() {
		for e := range producer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					zap.L().Error("Kafka Delivery failed: ", zap.Any("error", ev.TopicPartition.Error.Error()))
				} else {
					zap.L().Sugar().Debugf("Delivered message to %s", *ev.TopicPartition.Topic)
				}
			}
		}
	}()

	zap.L().Info("Connected to Kafka", zap.String("servers", cfg.BootstrapServers))
	return &Producer{producer: producer, topic: cfg.Topic}
}

func (p *Producer) SendMessage(event types.AnalyzerEvent) {
	if p == nil {
		return
	}
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("Failed to marshal analyzer event", zap.Error(err))
		return
	}

	zap.L().Sugar().Infof("Sending message to kafka: %s", message)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Value:          message,
	}, nil)
	if err != nil {
		zap.L().Error("Error sending message to kafka: ", zap.Any("error", err.Error()))
	}
}

func (p *Producer) Close() {
	if p == nil {
		return
	}
	p.producer.Flush(1000)
	p.producer.Close()
}
