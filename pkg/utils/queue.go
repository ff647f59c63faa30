package utils

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

func DeclareQueue(name string, ch *amqp.Channel) (queue amqp.Queue, err error) {
	queue, err = ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return
	}
	// One job at a time per consumer
	if err = ch.Qos(1, 0, false); err != nil {
		return
	}
	return
}

func FailOnNack(d amqp.Delivery, err error) {
	WarnLog("queue", "Could not handle message %s: %v", d.MessageId, err)
	// Message will be re-added to the queue
	if err = d.Nack(false, true); err != nil {
		logger.Fatal("Could not NACK to message queue", "err", err)
	}
}
