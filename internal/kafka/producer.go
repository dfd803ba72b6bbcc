package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-park-access/internal/logger"
	"ms-park-access/internal/models"
)

// Producer publishes access-control events for downstream collaborators
// (queueing, audit). One producer writes to one topic.
type Producer struct {
	Writer *kafka.Writer
	Logger *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer, Logger: log}
}

// PublishTicketIssued streams the freshly issued ticket. The QR payload is
// stripped; consumers only need the record fields.
func (p *Producer) PublishTicketIssued(ticket models.Ticket) error {
	ticket.QRCode = nil

	msgBytes, err := json.Marshal(ticket)
	if err != nil {
		return err
	}

	p.Logger.LogKafka("PUBLISH", p.Writer.Topic, fmt.Sprintf("ticket issued: %s", ticket.ID))

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(ticket.ID),
			Value: msgBytes,
		},
	)
}

// PublishAccessEvent streams a turnstile decision, allowed or denied.
func (p *Producer) PublishAccessEvent(event models.AccessEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.Logger.LogKafka("PUBLISH", p.Writer.Topic, fmt.Sprintf("access %s for ticket %s", decision(event.Allowed), event.TicketID))

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(event.TicketID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

func decision(allowed bool) string {
	if allowed {
		return "granted"
	}
	return "denied"
}
