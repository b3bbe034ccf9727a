package rabbitmq

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// RabbitMQServiceImpl publishes order events to a topic exchange. Each event
// type has a durable queue bound by its routing key, dead-lettered to
// <exchange>.dlx.
type RabbitMQServiceImpl struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewRabbitMQService(host, exchange string, routingKeys []string) (*RabbitMQServiceImpl, error) {
	conn, err := amqp.Dial(host)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	if err := declareTopology(ch, exchange, routingKeys); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitMQServiceImpl{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

func declareTopology(ch *amqp.Channel, exchange string, routingKeys []string) error {
	err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare an exchange: %w", err)
	}

	dlxName := exchange + ".dlx"
	err = ch.ExchangeDeclare(
		dlxName,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare a dead-letter exchange: %w", err)
	}

	dlqName := exchange + ".dlq"
	if _, err = ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare a dead-letter queue: %w", err)
	}
	if err = ch.QueueBind(dlqName, "", dlxName, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead-letter queue: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": dlxName,
	}
	for _, routingKey := range routingKeys {
		_, err = ch.QueueDeclare(
			routingKey,
			true,
			false,
			false,
			false,
			args,
		)
		if err != nil {
			return fmt.Errorf("failed to declare event queue %s: %w", routingKey, err)
		}

		err = ch.QueueBind(
			routingKey, // queue name
			routingKey, // routing key (same as queue name)
			exchange,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to bind event queue %s: %w", routingKey, err)
		}
	}
	return nil
}

// Publish sends a persistent JSON message with the given routing key.
func (s *RabbitMQServiceImpl) Publish(routingKey string, body []byte) error {
	if routingKey == "" {
		return fmt.Errorf("routing key cannot be empty")
	}
	if body == nil {
		return fmt.Errorf("message body cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn.IsClosed() {
		return fmt.Errorf("connection to RabbitMQ is closed")
	}
	if s.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	err := s.channel.Publish(
		s.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message with routing key '%s': %w", routingKey, err)
	}
	return nil
}

// IsHealthy checks if the RabbitMQ connection is healthy
func (s *RabbitMQServiceImpl) IsHealthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.conn.IsClosed() && s.channel != nil
}

func (s *RabbitMQServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channel != nil {
		s.channel.Close()
		s.channel = nil
	}
	s.conn.Close()
}
