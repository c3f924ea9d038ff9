package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	// SubjectTranscriptStored is published once per transcript record persisted.
	SubjectTranscriptStored = "swarm.minutes.transcript.stored"
	// SubjectScanRequested triggers a batch run, optionally narrowed to one meeting.
	SubjectScanRequested = "swarm.minutes.scan.requested"
	// SubjectRegistered announces the service on boot.
	SubjectRegistered = "swarm.agent.minutes.registered"
)

// TranscriptStoredEvent is the payload of SubjectTranscriptStored.
type TranscriptStoredEvent struct {
	TranscriptID string   `json:"transcript_id"`
	SourceID     string   `json:"source_id"`
	Title        string   `json:"title"`
	EntityType   string   `json:"entity_type,omitempty"`
	EntityID     string   `json:"entity_id,omitempty"`
	Participants []string `json:"participants"`
}

// ScanRequest is the payload of SubjectScanRequested.
type ScanRequest struct {
	MeetingURL string `json:"meeting_url,omitempty"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("minutes"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

// Drain flushes pending messages and closes the connection.
func (c *Client) Drain() error {
	return c.conn.Drain()
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
