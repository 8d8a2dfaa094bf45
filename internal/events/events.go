// Package events publishes rep notifications for downstream consumers such
// as a clinician dashboard.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// RepCompletedTopic is appended to the configured topic prefix.
const RepCompletedTopic = "rep_completed"

// ErrNotConnected is returned by Publish while the broker is unreachable.
var ErrNotConnected = errors.New("mqtt not connected")

// RepCompleted is emitted each time a frame completes a repetition.
type RepCompleted struct {
	Exercise  string    `json:"exercise"`
	Side      string    `json:"side"`
	Reps      int       `json:"reps"`
	Angle     float64   `json:"angle"`
	RequestID string    `json:"request_id"`
	At        time.Time `json:"at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	PublishRepCompleted(ctx context.Context, ev RepCompleted) error
	Close() error
}

// #region nop
// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishRepCompleted(context.Context, RepCompleted) error { return nil }
func (Nop) Close() error                                            { return nil }

// #endregion nop

// #region mqtt
// MQTTConfig configures the broker connection.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
}

// MQTTPublisher publishes JSON events to an MQTT broker.
type MQTTPublisher struct {
	cfg    MQTTConfig
	client mqtt.Client
	logger *slog.Logger

	mu        sync.RWMutex
	connected bool
	published uint64
	errors    uint64
}

// NewMQTTPublisher builds a publisher with auto-reconnect. Call Connect
// before publishing.
func NewMQTTPublisher(cfg MQTTConfig, logger *slog.Logger) *MQTTPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	p := &MQTTPublisher{cfg: cfg, logger: logger.With("component", "events")}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		p.setConnected(true)
		p.logger.Info("mqtt connection established", "broker", cfg.Broker, "client_id", cfg.ClientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		p.setConnected(false)
		p.logger.Warn("mqtt connection lost, will auto-reconnect", "error", err, "broker", cfg.Broker)
	}
	p.client = mqtt.NewClient(opts)
	return p
}

// newMQTTPublisherWithClient injects a client. Used for testing.
func newMQTTPublisherWithClient(cfg MQTTConfig, client mqtt.Client, logger *slog.Logger) *MQTTPublisher {
	return &MQTTPublisher{cfg: cfg, client: client, logger: logger}
}

// Connect waits up to timeout for the first connection.
func (p *MQTTPublisher) Connect(timeout time.Duration) error {
	token := p.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt connect %s: timeout", p.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", p.cfg.Broker, err)
	}
	p.setConnected(true)
	return nil
}

// PublishRepCompleted sends ev to <topic>/rep_completed.
func (p *MQTTPublisher) PublishRepCompleted(ctx context.Context, ev RepCompleted) error {
	if !p.isConnected() {
		p.countError()
		return ErrNotConnected
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		p.countError()
		return fmt.Errorf("marshal event: %w", err)
	}

	topic := p.cfg.Topic + "/" + RepCompletedTopic
	token := p.client.Publish(topic, p.cfg.QoS, false, payload)

	select {
	case <-token.Done():
	case <-ctx.Done():
		p.countError()
		return fmt.Errorf("publish %s: %w", topic, ctx.Err())
	}
	if err := token.Error(); err != nil {
		p.countError()
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	p.mu.Lock()
	p.published++
	p.mu.Unlock()
	p.logger.Debug("event published", "topic", topic, "size", len(payload))
	return nil
}

// Stats reports publish counters.
func (p *MQTTPublisher) Stats() (published, failed uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.published, p.errors
}

// Close disconnects with a short grace period.
func (p *MQTTPublisher) Close() error {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
	p.setConnected(false)
	return nil
}

func (p *MQTTPublisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

func (p *MQTTPublisher) isConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

func (p *MQTTPublisher) countError() {
	p.mu.Lock()
	p.errors++
	p.mu.Unlock()
}

// #endregion mqtt
