package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gfxtab/gfxtab-api/internal/version"
)

const (
	DefaultQueueSize = 256
	DefaultTimeout   = 5 * time.Second
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event publisher closed")
)

// Noop drops every event. Used when events are disabled.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }

type event struct {
	routingKey string
	body       []byte
	at         time.Time
}

// AMQPPublisher queues JSON events and delivers them from one background
// goroutine that owns the broker connection. Publish never waits on the
// network: it encodes the payload and enqueues it, failing fast when the
// queue is full. The connection is dialed on first delivery and re-dialed
// after the broker drops it; each dial and publish is bounded by the
// configured timeout.
type AMQPPublisher struct {
	url      string
	exchange string
	timeout  time.Duration

	queue    chan event
	ctx      context.Context
	cancel   context.CancelFunc
	stopped  chan struct{}
	stopOnce sync.Once
	failures atomic.Uint64

	// owned by run
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[string]bool
}

func NewAMQPPublisher(cfg *Config) *AMQPPublisher {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &AMQPPublisher{
		url:      cfg.URL,
		exchange: cfg.Exchange,
		timeout:  timeout,
		queue:    make(chan event, size),
		ctx:      ctx,
		cancel:   cancel,
		stopped:  make(chan struct{}),
		declared: make(map[string]bool),
	}
	go p.run()
	return p
}

// Publish enqueues payload for routingKey. On the default exchange the
// routing key doubles as a durable queue name, declared on first use.
func (p *AMQPPublisher) Publish(_ context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if p.ctx.Err() != nil {
		return ErrClosed
	}

	select {
	case p.queue <- event{routingKey: routingKey, body: body, at: time.Now().UTC()}:
		return nil
	default:
		p.failures.Add(1)
		return fmt.Errorf("%w: dropped %s", ErrQueueFull, routingKey)
	}
}

// Failures counts events that were dropped or could not be delivered
func (p *AMQPPublisher) Failures() uint64 {
	return p.failures.Load()
}

// Close stops the delivery goroutine and closes the broker connection.
// Events still queued are dropped. A delivery already in flight is allowed
// to finish or hit its timeout first.
func (p *AMQPPublisher) Close() error {
	var err error
	p.stopOnce.Do(func() {
		p.cancel()
		<-p.stopped
		err = p.closeConn()
	})
	return err
}

func (p *AMQPPublisher) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.ctx.Done():
			return
		case ev := <-p.queue:
			if err := p.deliver(ev); err != nil {
				p.failures.Add(1)
				slog.Warn("amqp publish", "routingKey", ev.routingKey, "error", err)
			}
		}
	}
}

func (p *AMQPPublisher) deliver(ev event) error {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}

	if p.exchange == "" && !p.declared[ev.routingKey] {
		if _, err := ch.QueueDeclare(ev.routingKey, true, false, false, false, nil); err != nil {
			p.reset()
			return fmt.Errorf("declare queue %s: %w", ev.routingKey, err)
		}
		p.declared[ev.routingKey] = true
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.at,
		Body:         ev.body,
	}
	if err := ch.PublishWithContext(ctx, p.exchange, ev.routingKey, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("publish %s: %w", ev.routingKey, err)
	}
	return nil
}

func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(version.UserAgent())
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat:  10 * time.Second,
		Locale:     "en_US",
		Properties: props,
		Dial:       dialContext(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	slog.Debug("amqp publisher connected", "exchange", p.exchange)
	p.conn, p.ch = conn, ch
	return ch, nil
}

// dialContext bounds the TCP connect by ctx and the AMQP handshake by its
// deadline. The library clears the deadline once the handshake completes.
func dialContext(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if deadline, ok := ctx.Deadline(); ok {
			if err := conn.SetDeadline(deadline); err != nil {
				_ = conn.Close()
				return nil, err
			}
		}
		return conn, nil
	}
}

func (p *AMQPPublisher) reset() {
	_ = p.closeConn()
	p.declared = make(map[string]bool)
}

func (p *AMQPPublisher) closeConn() error {
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn, p.ch = nil, nil
	return err
}
