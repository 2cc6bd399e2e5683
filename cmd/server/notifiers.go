package main

import (
	"fmt"

	"remit/internal/config"
	"remit/internal/services/notification"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// buildNotifier assembles the dispatchers named in NOTIFIER. The returned
// function closes any writer it opened.
func buildNotifier(cfg *config.Config, client redis.UniversalClient, log *zap.Logger) (notification.Dispatcher, func(), error) {
	var fanout notification.Fanout
	var closers []func() error

	for _, name := range cfg.Notifiers {
		switch name {
		case "log":
			fanout = append(fanout, notification.NewLogDispatcher(log))
		case "redis":
			fanout = append(fanout, notification.NewRedisDispatcher(client))
		case "kafka":
			if len(cfg.KafkaBrokers) == 0 {
				return nil, nil, fmt.Errorf("NOTIFIER includes kafka but KAFKA_BROKERS is empty")
			}
			d := notification.NewKafkaDispatcher(notification.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
			fanout = append(fanout, d)
			closers = append(closers, d.Close)
		default:
			return nil, nil, fmt.Errorf("unknown notifier %q", name)
		}
	}
	log.Info("notifiers configured", zap.Strings("notifiers", cfg.Notifiers))

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("failed to close notifier", zap.Error(err))
			}
		}
	}
	if len(fanout) == 0 {
		return nil, closeAll, nil
	}
	return fanout, closeAll, nil
}
