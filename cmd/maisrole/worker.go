package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oksasatya/maisrole-api/pkg/helpers"
	"github.com/oksasatya/maisrole-api/pkg/mailer"
)

// NewWorkerCmd creates the worker command consuming account-event emails.
func NewWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume account events and send account emails",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx)
		},
	}
}

func runWorker(ctx context.Context) error {
	cfg, logger := loadBase()

	var sender mailer.Sender
	if cfg.MailSendEnabled && cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" && cfg.MailgunSender != "" {
		sender = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		logger.Warn("mailgun disabled or not configured; emails are only logged")
		sender = mailer.LogSender{Log: func(to, subject string) {
			logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("email (not sent)")
		}}
	}

	var consumer *helpers.RabbitConsumer
	err := helpers.Retry(ctx, logger, "rabbitmq", cfg.StartupRetries, retryBase, func(context.Context) error {
		c, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQAccountQueue, cfg.WorkerPrefetch)
		if err != nil {
			return err
		}
		consumer = c
		return nil
	})
	if err != nil {
		return err
	}
	defer consumer.Close()

	deliveries, err := consumer.Deliveries()
	if err != nil {
		return err
	}

	logger.WithField("queue", cfg.RabbitMQAccountQueue).Info("email worker listening")
	mailer.NewWorker(sender, logger).Run(ctx, deliveries)
	logger.Info("email worker stopped")
	return nil
}
