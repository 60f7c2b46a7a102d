// Package notifier содержит приложение, которое читает уведомления об
// истекающих абонементах, открывает по ним тикеты и отправляет напоминания.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/studio-churn/internal/config"
	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/lib/smtp"
	"github.com/magabrotheeeer/studio-churn/internal/rabbitmq"
	notifierservice "github.com/magabrotheeeer/studio-churn/internal/services/notifier"
	"github.com/magabrotheeeer/studio-churn/internal/services/sender"
	"github.com/magabrotheeeer/studio-churn/internal/services/tickets"
	"github.com/magabrotheeeer/studio-churn/internal/storage/repository"
)

// App представляет приложение уведомлений.
type App struct {
	notifierService *notifierservice.NotifierService
	conn            *amqp.Connection
	ch              *amqp.Channel
	db              *repository.Storage
	logger          *slog.Logger
}

func waitForDB(ctx context.Context, db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(ctx, db)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения уведомлений.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(ctx, db); err != nil {
		_ = db.Close()
		closeResources(ch, conn, logger)
		return nil, err
	}

	var reminders notifierservice.Reminders
	if cfg.SMTPHost != "" {
		reminders = sender.NewSenderService(smtp.NewTransport(cfg.SMTP, logger), logger)
	} else {
		logger.Info("smtp host is not set, renewal reminders are disabled")
	}

	return &App{
		notifierService: notifierservice.NewNotifierService(tickets.New(db, logger), reminders, logger),
		conn:            conn,
		ch:              ch,
		db:              db,
		logger:          logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
}

// Run запускает потребителя очереди и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.ExpiringQueue, a.notifierService.Handler(ctx))
	if err != nil {
		closeResources(a.ch, a.conn, a.logger)
		_ = a.db.Close()
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	a.logger.Info("notifier is consuming", slog.String("queue", rabbitmq.ExpiringQueue))

	<-ctx.Done()

	a.logger.Info("shutting down notifier service")
	closeResources(a.ch, a.conn, a.logger)
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	return nil
}
