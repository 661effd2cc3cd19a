package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/image-converter/config"
	"github.com/ds124wfegd/image-converter/internal/entity"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// EventHandler receives every decoded conversion event.
type EventHandler func(entity.ConversionEvent)

// StartEventConsumer reads conversion events until ctx is cancelled.
func StartEventConsumer(ctx context.Context, cfg config.KafkaConfig, handle EventHandler) error {

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})
	defer reader.Close()

	logrus.WithFields(logrus.Fields{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	}).Info("Conversion event consumer started")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			logrus.Errorf("Error reading message from Kafka: %v", err)
			continue
		}

		event, err := DecodeEvent(msg.Value)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"partition": msg.Partition,
				"offset":    msg.Offset,
			}).Errorf("Failed to parse conversion event: %v", err)
			continue
		}

		handle(event)
	}
}

func DecodeEvent(value []byte) (entity.ConversionEvent, error) {
	var event entity.ConversionEvent
	err := json.Unmarshal(value, &event)
	return event, err
}

// LogEvent is the default EventHandler.
func LogEvent(event entity.ConversionEvent) {
	entry := logrus.WithFields(logrus.Fields{
		"request_id":    event.RequestID,
		"filename":      event.Filename,
		"source_mime":   event.SourceMIME,
		"output_format": event.OutputFormat,
		"outcome":       event.Outcome,
		"bytes":         event.Bytes,
		"duration_ms":   event.DurationMs,
	})
	if event.Error != "" {
		entry.WithField("error", event.Error).Warn("Conversion failed")
		return
	}
	entry.Info("Conversion completed")
}
