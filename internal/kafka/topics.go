package kafka

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-park-access/internal/logger"
)

// EnsureTopicsExist creates the given topics if they don't already exist.
// Called once at service start when Kafka is enabled.
func EnsureTopicsExist(brokers []string, topics []string, log *logger.Logger) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	for _, topic := range topics {
		err = controllerConn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		if err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.LogKafka("CREATE", topic, "topic already exists")
				continue
			}
			log.LogKafka("CREATE", topic, fmt.Sprintf("error creating topic: %v", err))
		} else {
			log.LogKafka("CREATE", topic, "topic created")
		}
	}

	// Give the cluster a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
	return nil
}
