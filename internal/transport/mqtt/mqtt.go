// Package mqtt implements the pub/sub transport on top of an MQTT broker.
package mqtt

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/volleyhq/volley/internal/retry"
	"github.com/volleyhq/volley/internal/transport"
)

const (
	defaultQoS     = 0 // At most once
	connectTimeout = 5 * time.Second
	publishTimeout = 5 * time.Second
)

// Config holds MQTT connection configuration
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Client wraps a paho client behind the transport interface.
type Client struct {
	client paho.Client
}

var _ transport.Client = (*Client)(nil)

// NewClient connects to the broker, retrying transient failures with
// backoff. An empty ClientID gets a generated volley-prefixed one so
// parallel invocations do not kick each other off the broker.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "volley-" + uuid.NewString()[:8]
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetAutoReconnect(true).
		SetKeepAlive(10 * time.Second).
		SetConnectTimeout(connectTimeout)

	client := paho.NewClient(opts)

	var err error
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		token := client.Connect()
		token.WaitTimeout(connectTimeout)
		err = token.Error()
		if err == nil && client.IsConnected() {
			return &Client{client: client}, nil
		}
		if err == nil {
			err = fmt.Errorf("connect to %s timed out", cfg.Broker)
		}
		if !retry.IsRetryable(err) || attempt == retry.MaxAttempts {
			break
		}
		retry.SleepWithBackoff(ctx, attempt)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("failed to connect to MQTT broker at %s: %w", cfg.Broker, err)
}

// Publish sends one message to topic at QoS 0.
func (c *Client) Publish(ctx context.Context, topic, payload string) error {
	token := c.client.Publish(topic, defaultQoS, false, []byte(payload))
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to topic %s: timeout after %s", topic, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to topic %s: %w", topic, err)
	}
	return ctx.Err()
}

// Subscribe delivers messages on topic to handler until ctx is canceled.
func (c *Client) Subscribe(ctx context.Context, topic string, handler transport.Handler) error {
	callback := func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), string(msg.Payload()))
	}

	token := c.client.Subscribe(topic, defaultQoS, callback)
	token.WaitTimeout(connectTimeout)
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribing to topic %s: %w", topic, err)
	}

	<-ctx.Done()
	c.client.Unsubscribe(topic)
	return ctx.Err()
}

// Ping checks if the broker connection is alive. MQTT keepalives run in
// the background, so this only inspects connection state.
func (c *Client) Ping(ctx context.Context) error {
	if !c.client.IsConnectionOpen() {
		return fmt.Errorf("not connected to MQTT broker")
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	c.client.Disconnect(250)
	return nil
}
