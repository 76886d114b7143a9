package main

import (
	"context"
	"log/slog"

	"github.com/BearBump/CarTrack/config"
	"github.com/BearBump/CarTrack/internal/broker/kafka"
	"github.com/BearBump/CarTrack/internal/integrations/mail"
	"github.com/BearBump/CarTrack/internal/integrations/mail/fake"
	"github.com/BearBump/CarTrack/internal/integrations/mail/smtpmail"
	"github.com/BearBump/CarTrack/internal/services/mailer"
)

type notifierFactories struct {
	newConsumer func(cfg *config.Config, topic, group string) (c mailer.Consumer, closeFn func() error)
	newSender   func(cfg *config.Config) mail.Sender
}

func defaultNotifierFactories() notifierFactories {
	return notifierFactories{
		newConsumer: func(cfg *config.Config, topic, group string) (mailer.Consumer, func() error) {
			c := kafka.NewConsumer(cfg.Kafka.Brokers(), topic, group)
			return c, c.Close
		},
		newSender: func(cfg *config.Config) mail.Sender {
			// Без SMTP письма только пишутся в лог.
			if cfg.SMTP.Host == "" {
				return fake.New()
			}
			port := cfg.SMTP.Port
			if port == 0 {
				port = 587
			}
			return smtpmail.New(smtpmail.Config{
				Host:     cfg.SMTP.Host,
				Port:     port,
				Username: cfg.SMTP.Username,
				Password: cfg.SMTP.Password,
				From:     cfg.SMTP.From,
			})
		},
	}
}

func notifierTopic(cfg *config.Config) string {
	if cfg.Kafka.NotificationsTopicName == "" {
		return "notification.requested"
	}
	return cfg.Kafka.NotificationsTopicName
}

func notifierGroup(cfg *config.Config) string {
	if cfg.CarTrack.NotifierConsumerGroup == "" {
		return "cartrack-notifier"
	}
	return cfg.CarTrack.NotifierConsumerGroup
}

// RunNotifier читает топик уведомлений и рассылает письма, рядом поднимает HTTP со статистикой.
func RunNotifier(ctx context.Context, cfg *config.Config, f notifierFactories, httpOpts notifierHTTPOpts) error {
	topic := notifierTopic(cfg)
	group := notifierGroup(cfg)

	consumer, closeFn := f.newConsumer(cfg, topic, group)
	if closeFn != nil {
		defer func() { _ = closeFn() }()
	}

	m := mailer.New(consumer, f.newSender(cfg))

	httpOpts.mailer = m
	httpOpts.cfg = cfg
	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runNotifierHTTPServer(ctx, httpOpts)
	}()

	runErr := make(chan error, 1)
	go func() {
		slog.Info("notifier started", "topic", topic, "group", group, "smtp", cfg.SMTP.Host != "")
		runErr <- m.Run(ctx)
	}()

	select {
	case err := <-runErr:
		return err
	case err := <-httpErr:
		return err
	}
}
