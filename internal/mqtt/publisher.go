// Package mqtt publishes the latest fix view to an MQTT broker.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/ratelimit"
)

type Config struct {
	Broker   string
	ClientID string
	Topic    string
	// MaxRateHz caps publishes per second. Updates in between are
	// coalesced; only the newest is sent.
	MaxRateHz int
	QoS       byte
	Retain    bool
}

// publisher is the slice of the paho client the Publisher needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Close()
}

type pahoClient struct {
	c paho.Client
}

func dialPaho(cfg Config) (publisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(5 * time.Second)

	c := paho.NewClient(opts)
	t := c.Connect()
	if !t.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.Broker)
	}
	if err := t.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	return pahoClient{c: c}, nil
}

func (p pahoClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	t := p.c.Publish(topic, qos, retained, payload)
	if !t.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("mqtt publish to %s timed out", topic)
	}
	return t.Error()
}

func (p pahoClient) Close() { p.c.Disconnect(250) }

type Publisher struct {
	cfg Config
	pub publisher
	rl  ratelimit.Limiter

	notify chan struct{}
	mu     sync.Mutex
	latest []byte

	cancel context.CancelFunc
	wg     sync.WaitGroup

	published atomic.Uint64
	failed    atomic.Uint64
	lastErr   atomic.Value // string
}

type Stats struct {
	Topic     string `json:"topic"`
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
	LastError string `json:"last_error,omitempty"`
}

// New connects to cfg.Broker.
func New(cfg Config) (*Publisher, error) {
	if strings.TrimSpace(cfg.Broker) == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("mqtt topic is required")
	}
	pub, err := dialPaho(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("mqtt connected broker=%s topic=%s", cfg.Broker, cfg.Topic)
	return newPublisher(cfg, pub, limiterFor(cfg.MaxRateHz)), nil
}

func limiterFor(hz int) ratelimit.Limiter {
	if hz <= 0 {
		return ratelimit.NewUnlimited()
	}
	return ratelimit.New(hz)
}

func newPublisher(cfg Config, pub publisher, rl ratelimit.Limiter) *Publisher {
	return &Publisher{cfg: cfg, pub: pub, rl: rl, notify: make(chan struct{}, 1)}
}

// Update queues v, JSON encoded, as the next payload.
func (p *Publisher) Update(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.latest = b
	p.mu.Unlock()
	select {
	case p.notify <- struct{}{}:
	default:
	}
	return nil
}

func (p *Publisher) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(runCtx)
	}()
}

func (p *Publisher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.notify:
		}
		p.rl.Take()

		p.mu.Lock()
		payload := p.latest
		p.latest = nil
		p.mu.Unlock()
		if payload == nil {
			continue
		}

		if err := p.pub.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload); err != nil {
			if p.failed.Add(1) == 1 {
				log.Printf("mqtt publish failed topic=%s: %v", p.cfg.Topic, err)
			}
			p.lastErr.Store(err.Error())
			continue
		}
		p.published.Add(1)
	}
}

func (p *Publisher) Stats() Stats {
	st := Stats{Topic: p.cfg.Topic, Published: p.published.Load(), Failed: p.failed.Load()}
	if v, ok := p.lastErr.Load().(string); ok {
		st.LastError = v
	}
	return st
}

// Close stops publishing and disconnects.
func (p *Publisher) Close() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.pub.Close()
}
