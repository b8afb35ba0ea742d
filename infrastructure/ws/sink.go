package ws

import (
	"context"
	"log/slog"

	"club-hub/domain/event"
)

// Sink adapts one websocket connection to the broadcaster's fan-out.
// Consume encodes the event and hands it to the client's send queue;
// it never blocks the dispatcher. A full queue drops the event, which
// is the documented best-effort contract.
type Sink struct {
	client *Client
	log    *slog.Logger
}

func NewSink(client *Client, log *slog.Logger) *Sink {
	return &Sink{client: client, log: log}
}

func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	data, err := EncodeEvent(e)
	if err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if !s.client.enqueue(data) {
		s.log.Debug("Send queue full, dropping event",
			"conn_id", s.client.ConnID(), "event", e.EventName())
	}
	return nil
}
