// Package mqtt wraps the paho client for telemetry subscriptions and command publishing.
package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/motofleet/internal/config"
)

const (
	defaultQoS     byte = 1
	connectTimeout      = 10 * time.Second
	quiesceMillis       = 250
)

// ErrNotConnected is returned when publishing while the broker link is down.
var ErrNotConnected = errors.New("mqtt client not connected")

// Handler processes one message. Returned errors are logged.
type Handler func(ctx context.Context, topic string, payload []byte) error

// Client is a connected broker session. Subscriptions are restored after reconnects.
type Client struct {
	client paho.Client
	logger *zap.Logger

	mu   sync.Mutex
	subs map[string]paho.MessageHandler
}

// ClientID returns the configured id with a random suffix, so several replicas can
// share a configuration.
func ClientID(base string) string {
	if base == "" {
		base = "motofleet"
	}
	return base + "-" + uuid.NewString()[:8]
}

// Connect opens a session with the broker.
func Connect(cfg config.MQTTConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{logger: logger, subs: map[string]paho.MessageHandler{}}

	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(ClientID(cfg.ClientID)).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOrderMatters(false).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("mqtt connection lost", zap.Error(err))
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username).SetPassword(cfg.Password)
	}

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connect to %s: timeout", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.BrokerURL, err)
	}

	logger.Info("mqtt connected", zap.String("broker", cfg.BrokerURL))
	return c, nil
}

// Subscribe routes messages of every topic filter to handler until ctx is done.
func (c *Client) Subscribe(ctx context.Context, topics []string, handler Handler) error {
	cb := messageHandler(ctx, handler, c.logger)

	for _, topic := range topics {
		token := c.client.Subscribe(topic, defaultQoS, cb)
		if err := wait(ctx, token); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		c.mu.Lock()
		c.subs[topic] = cb
		c.mu.Unlock()
		c.logger.Info("mqtt subscribed", zap.String("topic", topic))
	}
	return nil
}

// Publish sends payload to topic and waits for the broker acknowledgement.
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	if !c.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	if err := wait(ctx, c.client.Publish(topic, defaultQoS, false, payload)); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	c.client.Disconnect(quiesceMillis)
}

func (c *Client) onConnect(client paho.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, cb := range c.subs {
		if token := client.Subscribe(topic, defaultQoS, cb); token.WaitTimeout(connectTimeout) && token.Error() != nil {
			c.logger.Error("mqtt resubscribe failed", zap.String("topic", topic), zap.Error(token.Error()))
		}
	}
}

func messageHandler(ctx context.Context, handler Handler, logger *zap.Logger) paho.MessageHandler {
	return func(_ paho.Client, msg paho.Message) {
		if ctx.Err() != nil {
			return
		}
		if err := handler(ctx, msg.Topic(), msg.Payload()); err != nil {
			logger.Warn("mqtt message rejected", zap.String("topic", msg.Topic()), zap.Error(err))
		}
	}
}

func wait(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
