package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ds124wfegd/image-converter/config"
	"github.com/ds124wfegd/image-converter/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Producer interface {
	SendMessage(ctx context.Context, event entity.ConversionEvent) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

// NewProducer returns a kafka backed producer when events are enabled and a
// logging producer otherwise.
func NewProducer(cfg config.KafkaConfig) Producer {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logrus.Info("Kafka disabled, conversion events are only logged")
		return &logProducer{}
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		// conversions never wait on the broker
		Async: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"topic":    cfg.Topic,
					"messages": len(messages),
				}).Errorf("Failed to write conversion events to Kafka: %v", err)
			}
		},
	}

	logrus.WithField("brokers", cfg.Brokers).Info("Kafka producer configured")
	return &kafkaProducer{writer: writer}
}

func (p *kafkaProducer) SendMessage(ctx context.Context, event entity.ConversionEvent) error {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OutputFormat),
		Value: messageBytes,
		Time:  event.Timestamp,
	}

	return p.writer.WriteMessages(ctx, msg)
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// logProducer stands in for kafka when no broker is configured.
type logProducer struct{}

func (m *logProducer) SendMessage(_ context.Context, event entity.ConversionEvent) error {
	logrus.WithFields(logrus.Fields{
		"request_id":    event.RequestID,
		"output_format": event.OutputFormat,
		"outcome":       event.Outcome,
	}).Debug("Conversion event")
	return nil
}

func (m *logProducer) Close() error {
	return nil
}
