package queue

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/auditorium-seat-reservation/internal/errs"
)

// ErrBufferFull is returned by Publish when the outgoing buffer is full and
// the event was dropped.
var ErrBufferFull = errors.New("lifecycle event buffer full")

const (
    defaultBuffer      = 256
    defaultDialTimeout = 5 * time.Second
)

// Publisher sends events to a durable queue on the default exchange.
// Publish only enqueues; Run owns the broker connection and drains the
// buffer, so a slow or unreachable broker never holds up a request.
type Publisher struct {
    url         string
    queue       string
    dialTimeout time.Duration
    events      chan Event
    logger      *logrus.Logger

    // owned by Run
    conn *amqp.Connection
    ch   *amqp.Channel
}

type PublisherOption func(*Publisher)

// WithBuffer sets how many events may wait for the broker.
func WithBuffer(n int) PublisherOption {
    return func(p *Publisher) {
        if n > 0 {
            p.events = make(chan Event, n)
        }
    }
}

// WithDialTimeout bounds connecting, the AMQP handshake and each publish.
func WithDialTimeout(d time.Duration) PublisherOption {
    return func(p *Publisher) {
        if d > 0 {
            p.dialTimeout = d
        }
    }
}

func NewPublisher(url, queue string, logger *logrus.Logger, opts ...PublisherOption) *Publisher {
    p := &Publisher{
        url:         url,
        queue:       queue,
        dialTimeout: defaultDialTimeout,
        events:      make(chan Event, defaultBuffer),
        logger:      logger,
    }
    for _, opt := range opts {
        opt(p)
    }
    return p
}

// Publish hands ev to Run without blocking.  When the buffer is full the
// event is dropped, logged and ErrBufferFull returned.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
    select {
    case p.events <- ev:
        return nil
    default:
        p.logger.WithContext(ctx).WithFields(logrus.Fields{"event": ev.Type, "booking_id": ev.BookingID}).
            Warn("rabbitmq: buffer full; event dropped")
        return ErrBufferFull
    }
}

// Run publishes buffered events over a persistent connection until ctx is
// cancelled.  A failed event is logged and dropped, the connection is torn
// down and re-dialled for the next event after a backoff capped at 30s.
func (p *Publisher) Run(ctx context.Context) error {
    defer p.disconnect()
    backoff := time.Second
    for {
        select {
        case <-ctx.Done():
            return nil
        case ev := <-p.events:
            if err := p.send(ctx, ev); err != nil {
                p.logger.WithError(err).WithFields(logrus.Fields{"event": ev.Type, "booking_id": ev.BookingID}).
                    Warnf("rabbitmq: publish failed; event dropped, retrying broker in %s", backoff)
                p.disconnect()
                if !sleep(ctx, backoff) {
                    return nil
                }
                if backoff < 30*time.Second {
                    backoff *= 2
                }
                continue
            }
            backoff = time.Second
        }
    }
}

func (p *Publisher) send(ctx context.Context, ev Event) error {
    if p.ch == nil {
        if err := p.connect(); err != nil {
            return err
        }
    }
    body, err := json.Marshal(ev)
    if err != nil {
        return errs.Wrap(err, "marshal event")
    }
    pubCtx, cancel := context.WithTimeout(ctx, p.dialTimeout)
    defer cancel()
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Type:         string(ev.Type),
        Body:         body,
    }
    if err := p.ch.PublishWithContext(pubCtx, "", p.queue, false, false, pub); err != nil {
        return errs.Wrap(err, "publish event")
    }
    return nil
}

func (p *Publisher) connect() error {
    conn, err := dial(p.url, p.dialTimeout)
    if err != nil {
        return errs.Wrap(err, "dial broker")
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return errs.Wrap(err, "open channel")
    }
    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
        _ = conn.Close()
        return errs.Wrap(err, "declare queue")
    }
    p.conn, p.ch = conn, ch
    return nil
}

func (p *Publisher) disconnect() {
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.conn, p.ch = nil, nil
}

// dial connects with timeout bounding both the TCP connect and the AMQP
// handshake.
func dial(url string, timeout time.Duration) (*amqp.Connection, error) {
    return amqp.DialConfig(url, amqp.Config{
        Dial:      amqp.DefaultDial(timeout),
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
    })
}

// LogPublisher writes events to the application log.  It stands in for the
// broker when RABBITMQ_ENABLED is false.
type LogPublisher struct {
    logger *logrus.Logger
}

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
    return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, ev Event) error {
    p.logger.WithContext(ctx).WithFields(logrus.Fields{
        "event":      ev.Type,
        "booking_id": ev.BookingID,
        "ticket_id":  ev.TicketID,
        "show_id":    ev.ShowID,
        "seat":       ev.Seat,
    }).Info("lifecycle event")
    return nil
}
