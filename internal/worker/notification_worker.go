package worker

import (
	"go.uber.org/zap"

	"github.com/facilitydesk/helpdesk/internal/config"
	"github.com/facilitydesk/helpdesk/internal/events"
	"github.com/facilitydesk/helpdesk/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// dispatcher. With an AMQP URL configured every handled event is also
// forwarded to the broker; the returned stop func closes that connection.
func StartNotificationWorker(cfg config.NotificationConfig, dispatcher events.Dispatcher, logger *zap.Logger) (func(), error) {
	if dispatcher == nil {
		return func() {}, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.AMQPURL == "" {
		service.NewNotificationService(dispatcher, nil, logger).RegisterHandlers()
		logger.Info("notifications are log-only")
		return func() {}, nil
	}

	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	service.NewNotificationService(dispatcher, publisher, logger).RegisterHandlers()
	logger.Info("forwarding notifications to broker", zap.String("exchange", cfg.AMQPExchange))

	return func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("closing amqp publisher", zap.Error(err))
		}
	}, nil
}
