package queue

import (
	"context"
	"errors"

	"github.com/kursadbilgin/applytrack/internal/domain"
)

// Publisher publishes alert messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg AlertMessage) error
	Close() error
}

// MessageHandler handles a consumed alert. Returning an error wrapping
// ErrDeadLetter sends the delivery straight to the dead-letter queue; any
// other error requeues it once.
type MessageHandler func(ctx context.Context, msg AlertMessage) error

// Consumer consumes alert messages from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

var ErrDeadLetter = errors.New("dead-letter message")

const (
	AlertsQueue = "alerts"
	AlertsDLQ   = "dlq." + AlertsQueue

	alertsRoutingKey = AlertsQueue

	// queueMaxPriority is the RabbitMQ x-max-priority value for the alerts queue.
	queueMaxPriority int32 = 3
)

// PriorityValue maps company priority to RabbitMQ message priority.
func PriorityValue(priority domain.Priority) uint8 {
	switch priority {
	case domain.PriorityHigh:
		return 3
	case domain.PriorityMedium:
		return 2
	case domain.PriorityLow:
		return 1
	default:
		return 0
	}
}
