package kafka

import (
	"ms-park-access/internal/logger"
	"ms-park-access/internal/models"
)

// EventPublisher fans the two event kinds out to their topics. It satisfies
// the ticket service's EventPublisher interface.
type EventPublisher struct {
	issued *Producer
	access *Producer
}

func NewEventPublisher(brokers []string, issuedTopic, accessTopic string, log *logger.Logger) *EventPublisher {
	return &EventPublisher{
		issued: NewProducer(brokers, issuedTopic, log),
		access: NewProducer(brokers, accessTopic, log),
	}
}

func (e *EventPublisher) PublishTicketIssued(ticket models.Ticket) error {
	return e.issued.PublishTicketIssued(ticket)
}

func (e *EventPublisher) PublishAccessEvent(event models.AccessEvent) error {
	return e.access.PublishAccessEvent(event)
}

func (e *EventPublisher) Close() error {
	if err := e.issued.Close(); err != nil {
		return err
	}
	return e.access.Close()
}
