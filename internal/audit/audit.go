package audit

import (
	"context"
	"fmt"
	"log/slog"

	"studentattendance/internal/attendance"
	"studentattendance/internal/metrics"
	"studentattendance/internal/queue"
)

// Consumer turns attendance change events into audit log lines.
type Consumer struct {
	logger *slog.Logger
}

// NewConsumer creates a consumer that writes to logger.
func NewConsumer(logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{logger: logger.With("component", "audit")}
}

// Handle processes one message. Unknown types are skipped.
func (c *Consumer) Handle(ctx context.Context, msg queue.Message) error {
	switch msg.Type {
	case attendance.EventCreated, attendance.EventUpdated, attendance.EventDeleted:
	default:
		c.logger.Debug("skipping message", "type", msg.Type)
		return nil
	}

	var evt attendance.ChangeEvent
	if err := msg.Decode(&evt); err != nil {
		return fmt.Errorf("decode %s: %w", msg.Type, err)
	}
	c.logger.InfoContext(ctx, "attendance changed",
		"type", msg.Type,
		"record_id", evt.RecordID,
		"student_id", evt.StudentID,
		"day", evt.Day,
		"present", evt.Present,
		"at", evt.At,
	)
	metrics.EventsConsumed.WithLabelValues(msg.Type).Inc()
	return nil
}

// Run consumes q until ctx is cancelled or the stream closes.
func (c *Consumer) Run(ctx context.Context, q queue.Queue) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	c.logger.Info("audit consumer started")
	for msg := range messages {
		if err := c.Handle(ctx, msg); err != nil {
			c.logger.Warn("audit event dropped", "error", err)
		}
	}
	c.logger.Info("audit consumer stopped")
	return nil
}
