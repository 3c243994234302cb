// Command consumer drains the booking and reservation event queues into a
// rotating JSON audit log.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/selvawasi/selvawasi-api/internal/config"
	"github.com/selvawasi/selvawasi-api/internal/logger"
	"github.com/selvawasi/selvawasi-api/internal/queue"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: cfg.RabbitMQURL, Audit: logger.NewFileLogger(cfg.AuditLogFile)}
	logrus.WithField("queues", queue.Queues).Info("event-consumer: starting")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Fatal("event-consumer: stopped")
	}
	logrus.Info("event-consumer: bye")
}
