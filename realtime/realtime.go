// Package realtime delivers row-level change events to subscribed
// clients over NATS. Each mounted view holds at most one subscription
// per topic and must release it with the returned unsubscribe func.
package realtime

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vmihailenco/msgpack/v5"
)

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

type Event struct {
	Type  EventType `msgpack:"t"`
	Table string    `msgpack:"tb"`
	Row   []byte    `msgpack:"r"`
}

func NewEvent(typ EventType, table string, row any) (Event, error) {
	var ev Event

	b, err := msgpack.Marshal(row)
	if err != nil {
		return ev, fmt.Errorf("msgpack marshal event row: %w", err)
	}

	ev.Type = typ
	ev.Table = table
	ev.Row = b
	return ev, nil
}

func DecodeRow[T any](ev Event) (T, error) {
	var row T
	if err := msgpack.Unmarshal(ev.Row, &row); err != nil {
		return row, fmt.Errorf("msgpack unmarshal event row: %w", err)
	}
	return row, nil
}

var (
	publishedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_published_events_total",
		Help: "Number of change events published, by table.",
	}, []string{"table"})
	deliveredEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_delivered_events_total",
		Help: "Number of change events delivered to subscribers, by table.",
	}, []string{"table"})
)

type Broker struct {
	conn *nats.Conn
}

func NewBroker(conn *nats.Conn) *Broker {
	return &Broker{conn: conn}
}

func (b *Broker) Pub(topic string, ev Event) error {
	payload, err := msgpack.Marshal(ev)
	if err != nil {
		return fmt.Errorf("msgpack marshal event: %w", err)
	}

	if err := b.conn.Publish(topic, payload); err != nil {
		return fmt.Errorf("nats publish %s: %w", topic, err)
	}

	publishedEvents.WithLabelValues(ev.Table).Inc()
	return nil
}

// Sub registers fn for events on topic and returns the unsubscribe
// func. Unsubscribing is required on teardown; a remounted view that
// skips it would receive every event twice.
func (b *Broker) Sub(topic string, fn func(Event)) (func() error, error) {
	sub, err := b.conn.Subscribe(topic, func(msg *nats.Msg) {
		var ev Event
		if err := msgpack.Unmarshal(msg.Data, &ev); err != nil {
			return
		}

		deliveredEvents.WithLabelValues(ev.Table).Inc()
		fn(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", topic, err)
	}

	return sub.Unsubscribe, nil
}

// MessagesTopic carries message inserts/updates/deletes relevant to
// one user. The sender and the recipient each get a copy.
func MessagesTopic(userID string) string {
	return "messages." + userID
}

// PresenceTopic carries profile presence updates for one user.
func PresenceTopic(userID string) string {
	return "presence." + userID
}
