package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "sync"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
)

const (
    dialTimeout     = 2 * time.Second
    redialCooldown  = 10 * time.Second
    backlogSize     = 256
    backlogSendTime = 5 * time.Second
)

var (
    // ErrBrokerUnavailable is returned while the publisher waits out the
    // cooldown that follows a failed dial.
    ErrBrokerUnavailable = errors.New("rabbitmq unavailable")
    // ErrBacklogFull is returned when account events arrive faster than the
    // background sender drains them. The event is dropped.
    ErrBacklogFull = errors.New("account event backlog full")
)

type outbound struct {
    queue string
    body  any
}

// Publisher sends JSON messages to durable queues on the default exchange.
// The connection is opened lazily and reopened after a failure, but no more
// than once per cooldown. Account events go through a bounded backlog that
// Run drains, so callers on the login path never wait for the broker. Safe
// for concurrent use.
type Publisher struct {
    url string
    log *slog.Logger

    dial     func(url string) (*amqp.Connection, error)
    now      func() time.Time
    cooldown time.Duration
    backlog  chan outbound

    mu       sync.Mutex
    conn     *amqp.Connection
    ch       *amqp.Channel
    failedAt time.Time
}

func NewPublisher(url string, log *slog.Logger) *Publisher {
    return &Publisher{
        url: url,
        log: log,
        dial: func(url string) (*amqp.Connection, error) {
            return amqp.DialConfig(url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
        },
        now:      time.Now,
        cooldown: redialCooldown,
        backlog:  make(chan outbound, backlogSize),
    }
}

func (p *Publisher) channel() (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() {
        return p.ch, nil
    }
    if !p.failedAt.IsZero() && p.now().Sub(p.failedAt) < p.cooldown {
        return nil, ErrBrokerUnavailable
    }
    p.reset()
    conn, err := p.dial(p.url)
    if err != nil {
        p.failedAt = p.now()
        return nil, fmt.Errorf("dial: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        p.failedAt = p.now()
        return nil, fmt.Errorf("channel open: %w", err)
    }
    p.conn, p.ch, p.failedAt = conn, ch, time.Time{}
    return ch, nil
}

func (p *Publisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

// Publish marshals v and publishes it as a persistent message to queue.
func (p *Publisher) Publish(ctx context.Context, queue string, v any) error {
    body, err := json.Marshal(v)
    if err != nil {
        return fmt.Errorf("marshal: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()

    ch, err := p.channel()
    if err != nil {
        p.log.WarnContext(ctx, "rabbitmq unavailable", "queue", queue, "error", err)
        return err
    }
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        p.reset()
        return fmt.Errorf("queue declare: %w", err)
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", queue, false, false, pub); err != nil {
        p.reset()
        return fmt.Errorf("publish: %w", err)
    }
    return nil
}

// PublishContactSubmitted stamps an event id and publishes to ContactQueue.
func (p *Publisher) PublishContactSubmitted(ctx context.Context, ev ContactSubmittedEvent) error {
    if ev.EventID == "" {
        ev.EventID = uuid.NewString()
    }
    return p.Publish(ctx, ContactQueue, ev)
}

// HandleAccountEvent stamps an event id and queues the event for Run to send
// to AccountQueue. It never blocks; a full backlog drops the event.
func (p *Publisher) HandleAccountEvent(ctx context.Context, ev AccountEvent) error {
    if ev.EventID == "" {
        ev.EventID = uuid.NewString()
    }
    select {
    case p.backlog <- outbound{queue: AccountQueue, body: ev}:
        return nil
    default:
        return fmt.Errorf("%w: dropped %s for user %d", ErrBacklogFull, ev.Kind, ev.UserID)
    }
}

// Run drains the account event backlog until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
    for {
        select {
        case <-ctx.Done():
            return
        case m := <-p.backlog:
            sendCtx, cancel := context.WithTimeout(ctx, backlogSendTime)
            if err := p.Publish(sendCtx, m.queue, m.body); err != nil {
                p.log.WarnContext(ctx, "account event not delivered", "queue", m.queue, "error", err)
            }
            cancel()
        }
    }
}

// Close releases the broker connection.
func (p *Publisher) Close() {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.reset()
}
