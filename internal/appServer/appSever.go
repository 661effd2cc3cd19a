// launching the server, codecs and the conversion event producer
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/image-converter/config"
	"github.com/ds124wfegd/image-converter/internal/pkg/kafka"
	"github.com/ds124wfegd/image-converter/internal/pkg/processor"
	"github.com/ds124wfegd/image-converter/internal/pkg/registry"
	"github.com/ds124wfegd/image-converter/internal/service"
	"github.com/ds124wfegd/image-converter/internal/transport"
	"github.com/gin-gonic/gin"

	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12}, // ban on outdate TLS certificate
		ErrorLog:          log.New(logrus.StandardLogger().WriterLevel(logrus.ErrorLevel), "", 0),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// SetupLogger configures the global logrus logger.
func SetupLogger(cfg *config.Config) {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.App.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// NewHandler wires registry, codecs, producer and routes.
func NewHandler(cfg *config.Config, producer kafka.Producer) http.Handler {
	formats := registry.Default()
	imgProcessor := processor.NewImageProcessor(formats, cfg.App.JPEGQuality)
	convertService := service.NewConvertService(formats, imgProcessor, producer, cfg.App.MaxUploadSize)
	convertHandler := transport.NewConvertHandler(convertService, cfg.App.MaxUploadSize)

	return transport.InitRoutes(convertHandler, cfg.App.AllowedOrigins)
}

// ginMode is release for release mode or a production environment.
func ginMode(cfg *config.Config) string {
	if cfg.Server.Mode == "release" || cfg.Server.Env == "production" {
		return gin.ReleaseMode
	}
	if cfg.Server.Mode == gin.TestMode {
		return gin.TestMode
	}
	return gin.DebugMode
}

func startupFields(cfg *config.Config) logrus.Fields {
	return logrus.Fields{
		"addr":        net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		"version":     cfg.Server.AppVersion,
		"environment": cfg.Server.Env,
		"kafka":       cfg.Kafka.Enabled,
	}
}

func NewServer(cfg *config.Config) {

	SetupLogger(cfg)

	gin.SetMode(ginMode(cfg))

	producer := kafka.NewProducer(cfg.Kafka)
	defer func() {
		if err := producer.Close(); err != nil {
			logrus.Errorf("error occured while closing kafka producer: %s", err.Error())
		}
	}()

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, NewHandler(cfg, producer)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithFields(startupFields(cfg)).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
