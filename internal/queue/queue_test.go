package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

type fakeAcknowledger struct {
	acked    int
	nacked   int
	requeued bool
	rejected int
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacked++
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	f.rejected++
	if requeue {
		return fmt.Errorf("reject must not requeue")
	}
	return nil
}

func validAlert() AlertMessage {
	return AlertMessage{
		MessageID:      "msg-1",
		ScanID:         "scan-1",
		UserID:         "user-1",
		NotificationID: 7,
		Priority:       domain.PriorityHigh,
		Message:        "📩 Acme: Interview confirmed",
		CreatedAt:      time.Unix(1_700_000_000, 0).UTC(),
	}
}

func delivery(t *testing.T, ack *fakeAcknowledger, body any, redelivered bool) amqp.Delivery {
	t.Helper()

	var payload []byte
	switch v := body.(type) {
	case []byte:
		payload = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		payload = b
	}
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: payload, Redelivered: redelivered}
}

func TestQueueNames(t *testing.T) {
	t.Parallel()

	if AlertsQueue != "alerts" {
		t.Fatalf("AlertsQueue = %q, want alerts", AlertsQueue)
	}
	if AlertsDLQ != "dlq.alerts" {
		t.Fatalf("AlertsDLQ = %q, want dlq.alerts", AlertsDLQ)
	}

	args := workQueueArgs()
	if args["x-dead-letter-exchange"] != dlxExchangeName {
		t.Fatalf("dead-letter exchange = %v", args["x-dead-letter-exchange"])
	}
	if args["x-dead-letter-routing-key"] != AlertsQueue {
		t.Fatalf("dead-letter routing key = %v", args["x-dead-letter-routing-key"])
	}
}

func TestPriorityValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		priority domain.Priority
		want     uint8
	}{
		{name: "high", priority: domain.PriorityHigh, want: 3},
		{name: "medium", priority: domain.PriorityMedium, want: 2},
		{name: "low", priority: domain.PriorityLow, want: 1},
		{name: "unset", priority: domain.Priority(""), want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PriorityValue(tt.priority); got != tt.want {
				t.Fatalf("PriorityValue(%q) = %d, want %d", tt.priority, got, tt.want)
			}
		})
	}
}

func TestAlertMessageValidate(t *testing.T) {
	t.Parallel()

	if err := validAlert().Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AlertMessage)
	}{
		{name: "missing message id", mutate: func(m *AlertMessage) { m.MessageID = "" }},
		{name: "missing user", mutate: func(m *AlertMessage) { m.UserID = " " }},
		{name: "zero notification", mutate: func(m *AlertMessage) { m.NotificationID = 0 }},
		{name: "empty message", mutate: func(m *AlertMessage) { m.Message = "" }},
		{name: "bad priority", mutate: func(m *AlertMessage) { m.Priority = domain.Priority("urgent") }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := validAlert()
			tt.mutate(&msg)
			if err := msg.Validate(); err == nil {
				t.Fatal("Validate() expected error")
			}
		})
	}
}

func TestHandleDelivery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         any
		redelivered  bool
		handlerErr   error
		wantAck      int
		wantNack     int
		wantReject   int
		wantHandlers int
	}{
		{name: "success acks", body: validAlert(), wantAck: 1, wantHandlers: 1},
		{name: "invalid json is dead-lettered", body: []byte("{"), wantReject: 1},
		{name: "invalid payload is dead-lettered", body: AlertMessage{MessageID: "x"}, wantReject: 1},
		{name: "transient failure requeues", body: validAlert(), handlerErr: errors.New("timeout"), wantNack: 1, wantHandlers: 1},
		{name: "redelivered failure is dead-lettered", body: validAlert(), redelivered: true, handlerErr: errors.New("timeout"), wantReject: 1, wantHandlers: 1},
		{name: "permanent failure is dead-lettered", body: validAlert(), handlerErr: fmt.Errorf("bad request: %w", ErrDeadLetter), wantReject: 1, wantHandlers: 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			consumer := NewRabbitMQConsumer(nil, 0, zap.NewNop())
			ack := &fakeAcknowledger{}
			calls := 0
			handler := func(ctx context.Context, msg AlertMessage) error {
				calls++
				if msg.MessageID != "msg-1" {
					t.Errorf("message id = %q, want msg-1", msg.MessageID)
				}
				return tt.handlerErr
			}

			if err := consumer.handleDelivery(context.Background(), delivery(t, ack, tt.body, tt.redelivered), handler); err != nil {
				t.Fatalf("handleDelivery() error = %v", err)
			}
			if calls != tt.wantHandlers {
				t.Fatalf("handler calls = %d, want %d", calls, tt.wantHandlers)
			}
			if ack.acked != tt.wantAck || ack.nacked != tt.wantNack || ack.rejected != tt.wantReject {
				t.Fatalf("ack/nack/reject = %d/%d/%d, want %d/%d/%d",
					ack.acked, ack.nacked, ack.rejected, tt.wantAck, tt.wantNack, tt.wantReject)
			}
			if tt.wantNack > 0 && !ack.requeued {
				t.Fatal("nack should requeue")
			}
		})
	}
}

func TestConsumerAndPublisherRequireClient(t *testing.T) {
	t.Parallel()

	consumer := NewRabbitMQConsumer(nil, 0, nil)
	if consumer.prefetch != 1 {
		t.Fatalf("prefetch = %d, want 1", consumer.prefetch)
	}
	if err := consumer.Consume(context.Background(), AlertsQueue, func(context.Context, AlertMessage) error { return nil }); err == nil {
		t.Fatal("Consume() expected error without client")
	}

	publisher := NewRabbitMQPublisher(nil)
	if err := publisher.Publish(context.Background(), AlertsQueue, validAlert()); err == nil {
		t.Fatal("Publish() expected error without client")
	}
	if err := publisher.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var r *RabbitMQ
	if r.Connected() {
		t.Fatal("nil client must not report connected")
	}
	if _, err := NewRabbitMQ(" "); err == nil {
		t.Fatal("NewRabbitMQ() expected error for blank url")
	}
}
