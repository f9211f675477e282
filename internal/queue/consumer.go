package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one delivery body. A returned error rejects the message
// without requeueing it.
type Handler func(body []byte) error

// Consume connects to url, declares queue and hands every delivery to h. It
// reconnects with exponential backoff and returns only when ctx is done.
func Consume(ctx context.Context, url, queue string, h Handler, log *slog.Logger) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Warn("consumer: dial failed", "queue", queue, "error", err, "retry_in", backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = consumeLoop(ctx, conn, queue, h, log)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Warn("consumer: loop ended, reconnecting", "queue", queue, "error", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, h Handler, log *slog.Logger) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn("consumer: set QoS failed", "queue", queue, "error", err)
    }
    if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := h(d.Body); err != nil {
            log.Warn("consumer: handle message failed", "queue", queue, "error", err)
            _ = d.Nack(false, false)
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// ContactLogHandler appends each ContactSubmittedEvent as one line to
// dir/contact.log.
func ContactLogHandler(dir string) Handler {
    return func(body []byte) error {
        var ev ContactSubmittedEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        line := fmt.Sprintf("[%s] Contact message | id=%d | from=%q <%s> | subject=%q\n",
            ev.CreatedAt, ev.MessageID, ev.Name, ev.Email, ev.Subject)
        return appendLine(dir, "contact.log", line)
    }
}

// AccountLogHandler appends each AccountEvent as one line to dir/account.log.
func AccountLogHandler(dir string) Handler {
    return func(body []byte) error {
        var ev AccountEvent
        if err := json.Unmarshal(body, &ev); err != nil {
            return fmt.Errorf("unmarshal: %w", err)
        }
        line := fmt.Sprintf("[%s] %s | user_id=%d | username=%q | status=%q\n",
            ev.At, ev.Kind, ev.UserID, ev.Username, ev.Status)
        return appendLine(dir, "account.log", line)
    }
}

func appendLine(dir, name, line string) error {
    if err := os.MkdirAll(dir, 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
