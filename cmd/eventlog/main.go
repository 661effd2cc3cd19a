// tails the conversion event topic and logs every event
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ds124wfegd/image-converter/config"
	"github.com/ds124wfegd/image-converter/internal/appServer"
	"github.com/ds124wfegd/image-converter/internal/pkg/kafka"
	"github.com/sirupsen/logrus"
)

func main() {
	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	appServer.SetupLogger(cfg)

	if len(cfg.Kafka.Brokers) == 0 {
		logrus.Fatal("no kafka brokers configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kafka.StartEventConsumer(ctx, cfg.Kafka, kafka.LogEvent); err != nil {
		logrus.Fatalf("event consumer stopped: %s", err.Error())
	}
}
