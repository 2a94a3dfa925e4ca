// Package messaging provides the NATS client used for the moderation audit
// trail. The API publishes flagged-content events fire-and-forget; the
// moderator worker subscribes and persists them.
package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/latroca/latroca-api/internal/moderation"
)

// SubjectModerationFlagged carries one moderation.FlaggedEvent per message.
const SubjectModerationFlagged = "moderation.flagged"

// Client wraps the NATS connection with helper methods for pub/sub.
type Client struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// Config holds NATS connection settings.
type Config struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	MaxReconnects int
}

// DefaultConfig returns sensible defaults with infinite reconnects.
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		Name:          "latroca",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// Connect dials NATS with the given config and returns a ready client.
func Connect(config Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &Client{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given subject.
func (c *Client) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// PublishFlagged publishes a flagged-content event, fire-and-forget. The
// audit trail is best effort; a publish failure is logged and never fails
// the request that produced the flag.
func (c *Client) PublishFlagged(ev moderation.FlaggedEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[nats] marshal flagged event: %v", err)
		return
	}
	if err := c.Publish(SubjectModerationFlagged, data); err != nil {
		log.Printf("[nats] publish %s: %v", SubjectModerationFlagged, err)
	}
}

// SubscribeFlagged registers a handler for flagged-content events. Malformed
// payloads are logged and dropped.
func (c *Client) SubscribeFlagged(handler func(ev moderation.FlaggedEvent)) error {
	return c.subscribe(SubjectModerationFlagged, func(msg *nats.Msg) {
		var ev moderation.FlaggedEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			log.Printf("[nats] decode flagged event: %v", err)
			return
		}
		handler(ev)
	})
}

func (c *Client) subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// Close drains all active subscriptions and closes the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}
