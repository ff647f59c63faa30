package node

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/lioia/personalized-pagerank/pkg/utils"
)

// Consume solve jobs from the work queue until ctx is done or the channel closes
func (n *Node) Work(ctx context.Context) error {
	// Register consumer
	msgs, err := n.Queue.Channel.Consume(
		n.Queue.Work.Name, // queue
		"",                // consumer
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("could not register a consumer for %s queue: %w", n.Queue.Work.Name, err)
	}
	utils.NodeLog("worker", "Registered consumer for queue %s", n.Queue.Work.Name)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("work queue %s closed", n.Queue.Work.Name)
			}
			n.handleDelivery(ctx, d)
		}
	}
}

func (n *Node) handleDelivery(ctx context.Context, d amqp.Delivery) {
	utils.NodeLog("worker", "Computing job %s", d.MessageId)
	resp := n.Service.HandleJob(ctx, d.Body)
	data, err := json.Marshal(resp)
	if err != nil {
		utils.FailOnNack(d, err)
		return
	}
	// RPC-style callers name their own reply queue
	routingKey := n.Queue.Result.Name
	if d.ReplyTo != "" {
		routingKey = d.ReplyTo
	}
	publishCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = n.Queue.Channel.PublishWithContext(publishCtx,
		"",
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   "application/json",
			CorrelationId: d.CorrelationId,
			MessageId:     resp.ID,
			Timestamp:     time.Now(),
			Body:          data,
		})
	if err != nil {
		utils.FailOnNack(d, err)
		return
	}

	// Ack
	if err := d.Ack(false); err != nil {
		utils.WarnLog("worker", "Could not ack job %s: %v", d.MessageId, err)
		return
	}
	utils.NodeLog("worker", "Completed job %s", resp.ID)
}

// Solve the JSON-encoded request in body.
// Failures are reported inside the response so that a bad job is answered
// (and acked) instead of being requeued forever.
func (s *Service) HandleJob(ctx context.Context, body []byte) *SolveResponse {
	var req SolveRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return &SolveResponse{Error: fmt.Sprintf("could not decode job: %v", err)}
	}
	resp, err := s.Solve(ctx, &req)
	if err != nil {
		return &SolveResponse{ID: req.ID, Error: err.Error()}
	}
	return resp
}

// Publish req on the work queue; the reply is sent to replyTo (result queue
// if empty) with the request id as correlation id
func (n *Node) Submit(ctx context.Context, req *SolveRequest, replyTo string) error {
	if req.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return err
		}
		req.ID = id
	}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return n.Queue.Channel.PublishWithContext(ctx,
		"",
		n.Queue.Work.Name, // routing key
		false,             // mandatory
		false,             // immediate
		amqp.Publishing{
			DeliveryMode:  amqp.Persistent,
			ContentType:   "application/json",
			CorrelationId: req.ID,
			MessageId:     req.ID,
			ReplyTo:       replyTo,
			Body:          data,
		})
}
