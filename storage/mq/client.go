package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"FlockCheck/config"
)

var (
	conn    *amqp.Connection
	mqOnce  sync.Once
	initErr error
)

// Exchanges and queues the service publishes to and consumes from.
const (
	PagerExchange = "pager.topic"
	EventExchange = "events.topic"

	PagerPageQueue  = "pager.page"
	AuditEventQueue = "audit.events"

	PagerPageRoutingKey  = "pager.page.requested"
	AuditEventRoutingKey = "audit.event.#"
)

func Init() error {
	mqOnce.Do(func() {
		conn, initErr = amqp.Dial(config.Cfg.GetRabbitMQURL())
		if initErr != nil {
			return
		}

		var ch *amqp.Channel
		ch, initErr = conn.Channel()
		if initErr != nil {
			return
		}
		defer ch.Close()

		initErr = declareTopology(ch)
	})

	return initErr
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func declareTopology(ch *amqp.Channel) error {
	for _, exchange := range []string{PagerExchange, EventExchange} {
		if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
			return err
		}
	}

	if _, err := ch.QueueDeclare(PagerPageQueue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(PagerPageQueue, PagerPageRoutingKey, PagerExchange, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(AuditEventQueue, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.QueueBind(AuditEventQueue, AuditEventRoutingKey, EventExchange, false, nil)
}
