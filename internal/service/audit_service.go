package service

import (
	"context"

	"ai-docqa-be/internal/pkg/logger"
	"ai-docqa-be/pkg/events"
	pktNats "ai-docqa-be/pkg/nats"
)

// IAuditService records domain events flowing over the bus.
type IAuditService interface {
	Start() error
}

type auditService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewAuditService(subscriber *pktNats.Subscriber, log logger.ILogger) IAuditService {
	return &auditService{subscriber: subscriber, logger: log}
}

// Start attaches the durable audit consumer to the event stream. A nil
// subscriber (NATS unavailable) disables auditing rather than failing boot.
func (as *auditService) Start() error {
	if as.subscriber == nil {
		return nil
	}
	return as.subscriber.Subscribe("events.>", "qa-audit", as.record)
}

func (as *auditService) record(ctx context.Context, event events.Event) error {
	as.logger.Info("Audit", event.EventType(), event.Payload())
	return nil
}
