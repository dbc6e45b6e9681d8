package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/oppia-go-api/internal/dto"
)

// TrackerPublisher broadcasts recorded trackers to downstream consumers.
type TrackerPublisher interface {
	Publish(ctx context.Context, event dto.TrackerEvent) error
}

// NATSTrackerPublisher publishes tracker events on a NATS subject.
type NATSTrackerPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSTrackerPublisher constructs a publisher bound to the subject.
func NewNATSTrackerPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) *NATSTrackerPublisher {
	return &NATSTrackerPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "tracker_publisher").Logger(),
	}
}

// Publish serialises the event and sends it on the configured subject.
func (p *NATSTrackerPublisher) Publish(ctx context.Context, event dto.TrackerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode tracker event: %w", err)
	}

	msg := nats.NewMsg(fmt.Sprintf("%s.%s", p.subject, event.Type))
	msg.Data = payload
	msg.Header.Set("Oppia-Course", event.Shortname)
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish tracker event: %w", err)
	}

	p.logger.Debug().Uint("tracker_id", event.TrackerID).Str("subject", msg.Subject).Msg("tracker event published")
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, dto.TrackerEvent) error { return nil }
