// Consumer side: a background worker drains the reservation queues and
// appends structured lines to logs/notifications.log.  Email/SMS
// delivery hangs off this consumer in deployments that carry it; the
// log file is the always-on sink.
package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// StartNotificationConsumer connects to RabbitMQ, declares the durable
// reservation queues and starts consuming both.  Each message is
// appended to logs/notifications.log in a single-line, human-friendly
// format.  The function runs a reconnect loop with backoff and keeps
// running across broker restarts; processing errors are logged and the
// offending message rejected so the server continues operating.
func StartNotificationConsumer() error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(brokerURL())
        if err != nil {
            log.Printf("notify-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("notify-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
            continue
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("notify-consumer: set QoS failed: %v", err)
    }

    for _, name := range []string{confirmedQueueName, cancelledQueueName} {
        if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
            return fmt.Errorf("queue declare %s: %w", name, err)
        }
    }

    confirmed, err := ch.Consume(confirmedQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }
    cancelled, err := ch.Consume(cancelledQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case d, ok := <-confirmed:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            ackOrReject(d, handleConfirmed(d.Body))
        case d, ok := <-cancelled:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            ackOrReject(d, handleCancelled(d.Body))
        }
    }
}

func ackOrReject(d amqp.Delivery, err error) {
    if err != nil {
        log.Printf("notify-consumer: handle message failed: %v", err)
        _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
        return
    }
    _ = d.Ack(false)
}

func handleConfirmed(body []byte) error {
    var ev ReservationConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Reservation confirmed | ref=%s | name=%q | contact=%q | table=%s | party=%d | price_cents=%d\n",
        ev.DateTime, ev.ReferenceID, ev.CustomerName, ev.Contact, ev.TableNumber, ev.PartySize, ev.PriceCents)
    return appendNotification(line)
}

func handleCancelled(body []byte) error {
    var ev ReservationCancelledEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    line := fmt.Sprintf("[%s] Reservation cancelled | ref=%s | name=%q | contact=%q\n",
        ev.OriginalDateTime, ev.ReferenceID, ev.CustomerName, ev.Contact)
    return appendNotification(line)
}

func appendNotification(line string) error {
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "notifications.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
