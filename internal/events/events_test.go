package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// #region mock
type fakeToken struct {
	mqtt.Token

	done chan struct{}
	err  error
}

func doneToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { <-t.done; return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type fakeClient struct {
	mqtt.Client

	connectErr error
	publishTok *fakeToken

	topic   string
	qos     byte
	payload []byte
	closed  bool
}

func (c *fakeClient) Connect() mqtt.Token { return doneToken(c.connectErr) }

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.topic, c.qos = topic, qos
	c.payload = payload.([]byte)
	if c.publishTok != nil {
		return c.publishTok
	}
	return doneToken(nil)
}

func (c *fakeClient) IsConnected() bool { return !c.closed }

func (c *fakeClient) Disconnect(uint) { c.closed = true }

func newTestPublisher(c *fakeClient) *MQTTPublisher {
	cfg := MQTTConfig{Broker: "tcp://broker:1883", ClientID: "physio-test", Topic: "physio/events", QoS: 1}
	return newMQTTPublisherWithClient(cfg, c, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// #endregion mock

func TestPublishRepCompleted(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)
	if err := p.Connect(time.Second); err != nil {
		t.Fatalf("connect: %v", err)
	}

	ev := RepCompleted{
		Exercise:  "Shoulder Flexion",
		Side:      "left",
		Reps:      3,
		Angle:     152.4,
		RequestID: "req-1",
		At:        time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := p.PublishRepCompleted(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if c.topic != "physio/events/rep_completed" {
		t.Errorf("unexpected topic %q", c.topic)
	}
	if c.qos != 1 {
		t.Errorf("expected qos 1, got %d", c.qos)
	}
	var got RepCompleted
	if err := json.Unmarshal(c.payload, &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got != ev {
		t.Errorf("payload mismatch: %+v", got)
	}
	if pub, failed := p.Stats(); pub != 1 || failed != 0 {
		t.Errorf("expected 1/0, got %d/%d", pub, failed)
	}
}

func TestPublishRepCompleted_Failures(t *testing.T) {
	brokerErr := errors.New("not authorized")
	tests := []struct {
		name    string
		client  *fakeClient
		connect bool
		ctx     func() context.Context
		wantErr error
	}{
		{
			name:    "not connected",
			client:  &fakeClient{},
			wantErr: ErrNotConnected,
		},
		{
			name:    "broker rejects",
			client:  &fakeClient{publishTok: doneToken(brokerErr)},
			connect: true,
			wantErr: brokerErr,
		},
		{
			name:    "context cancelled",
			client:  &fakeClient{publishTok: &fakeToken{done: make(chan struct{})}},
			connect: true,
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErr: context.Canceled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPublisher(tt.client)
			if tt.connect {
				if err := p.Connect(time.Second); err != nil {
					t.Fatal(err)
				}
			}
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}
			err := p.PublishRepCompleted(ctx, RepCompleted{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if _, failed := p.Stats(); failed != 1 {
				t.Errorf("expected 1 failure counted, got %d", failed)
			}
		})
	}
}

func TestConnectError(t *testing.T) {
	c := &fakeClient{connectErr: errors.New("refused")}
	p := newTestPublisher(c)
	if err := p.Connect(time.Second); !errors.Is(err, c.connectErr) {
		t.Fatalf("expected wrapped connect error, got %v", err)
	}
	if err := p.PublishRepCompleted(context.Background(), RepCompleted{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestClose(t *testing.T) {
	c := &fakeClient{}
	p := newTestPublisher(c)
	p.Connect(time.Second)
	p.Close()
	if !c.closed {
		t.Error("expected disconnect")
	}
	if err := p.PublishRepCompleted(context.Background(), RepCompleted{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected after close, got %v", err)
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.PublishRepCompleted(context.Background(), RepCompleted{}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}
