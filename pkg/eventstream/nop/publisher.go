// Package nop provides the publisher used when turn events are disabled.
package nop

import (
	"context"
	"log/slog"

	"github.com/mindneox/recall/pkg/eventstream"
	"github.com/mindneox/recall/pkg/logger"
)

// Publisher drops turn events, noting each one at debug level.
type Publisher struct {
	logger *slog.Logger
}

// NewPublisher returns a Publisher. A nil logger discards the notes.
func NewPublisher(l *slog.Logger) *Publisher {
	if l == nil {
		l = logger.Nop()
	}
	return &Publisher{logger: l}
}

func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	p.logger.DebugContext(ctx, "turn event dropped, events disabled",
		"event_id", event.EventID,
		"user_id", event.Turn.UserID,
	)
	return nil
}

func (p *Publisher) Close() error {
	return nil
}
