package notification

import (
	"errors"
	"go-restaurant-pos/src/services/events"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrSessionBackpressure = errors.New("session buffer is full")
	ErrSessionClosed       = errors.New("session is closed")
)

// Session is one live viewer. Deliver must not block.
type Session interface {
	ID() string
	Deliver(event events.OrderEvent) error
	Close()
}

// ChannelSession buffers events for a single viewer connection. A viewer that
// falls a full buffer behind is dropped and has to reconnect.
type ChannelSession struct {
	id        string
	events    chan events.OrderEvent
	done      chan struct{}
	closeOnce sync.Once
}

func NewChannelSession(bufferSize int) *ChannelSession {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &ChannelSession{
		id:     uuid.NewString(),
		events: make(chan events.OrderEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

func (s *ChannelSession) ID() string { return s.id }

func (s *ChannelSession) Deliver(event events.OrderEvent) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.events <- event:
		return nil
	default:
		return ErrSessionBackpressure
	}
}

// Events is never closed; select on Done as well.
func (s *ChannelSession) Events() <-chan events.OrderEvent { return s.events }

func (s *ChannelSession) Done() <-chan struct{} { return s.done }

func (s *ChannelSession) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
