package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/mindneox/recall/pkg/eventstream"
)

// RecordingPublisher collects published events for assertions.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.TurnRecordedEvent

	// Fail causes PublishTurn to return an error.
	Fail bool
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) PublishTurn(_ context.Context, event *eventstream.TurnRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.Fail {
		return errors.New("mock publish failure")
	}
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}

// Events returns a copy of the published events.
func (p *RecordingPublisher) Events() []*eventstream.TurnRecordedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.TurnRecordedEvent(nil), p.events...)
}
