// Package alerts keeps the history of sent alerts as an append-only event log
// on JetStream and reduces it into the current list on read.
package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/mark3labs/alertr/internal/logger"
	"github.com/mark3labs/alertr/internal/nats"
	"github.com/mark3labs/alertr/internal/wizard"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"
)

// ErrNotFound is returned for ids that were never sent or are already deleted.
var ErrNotFound = errors.New("alert not found")

// Event is one entry of the alert event log.
type Event struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	Action    string          `json:"action"`
	AlertID   string          `json:"alert_id"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Alert is a sent alert as reconstructed from the log.
type Alert struct {
	ID      string         `json:"id"`
	SentAt  time.Time      `json:"sent_at"`
	Payload wizard.Payload `json:"payload"`
}

// TableItem is the row shown in alert listings.
type TableItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Recipients   int       `json:"recipients"`
	ScheduledFor string    `json:"scheduled_for"`
	SentAt       time.Time `json:"sent_at"`
}

// History is the read and delete surface used by listings.
type History interface {
	List(ctx context.Context) ([]TableItem, error)
	Delete(ctx context.Context, id string) error
}

// SentHook runs after an alert was recorded.
type SentHook func(ctx context.Context, a Alert)

// Store records alerts through JetStream event sourcing.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	onSent []SentHook
	log    *logger.Component
}

var (
	_ wizard.Sender = (*Store)(nil)
	_ History       = (*Store)(nil)
)

// NewStore creates a store over an existing stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream, log: logger.Named("alerts")}
}

// OnSent registers a hook called after every successful Send.
func (s *Store) OnSent(fn SentHook) {
	s.onSent = append(s.onSent, fn)
}

func (s *Store) publish(ctx context.Context, ev Event) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	ev.Type = nats.EventTypeAlert

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(ev.Type, ev.Action)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		s.log.Error("publish to %s failed: %v", subject, err)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	s.log.Debug("event published: action=%s alert=%s seq=%d", ev.Action, ev.AlertID, ack.Sequence)
	return nil
}

// Send records the payload as a new alert and returns it.
func (s *Store) Send(ctx context.Context, p wizard.Payload) (Alert, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return Alert{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	a := Alert{ID: xid.New().String(), SentAt: time.Now().UTC(), Payload: p}
	err = s.publish(ctx, Event{
		Timestamp: a.SentAt,
		Action:    nats.ActionSent,
		AlertID:   a.ID,
		Data:      data,
	})
	if err != nil {
		return Alert{}, err
	}

	for _, fn := range s.onSent {
		fn(ctx, a)
	}
	return a, nil
}

// SendAlert implements wizard.Sender.
func (s *Store) SendAlert(ctx context.Context, p wizard.Payload) error {
	_, err := s.Send(ctx, p)
	return err
}

// Delete removes an alert from the history.
func (s *Store) Delete(ctx context.Context, id string) error {
	st, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := st.alerts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.publish(ctx, Event{Action: nats.ActionDeleted, AlertID: id})
}

// Get returns one alert.
func (s *Store) Get(ctx context.Context, id string) (Alert, error) {
	st, err := s.load(ctx)
	if err != nil {
		return Alert{}, err
	}
	a, ok := st.alerts[id]
	if !ok {
		return Alert{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *a, nil
}

// List returns every alert still in the history, newest first.
func (s *Store) List(ctx context.Context) ([]TableItem, error) {
	st, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]TableItem, 0, len(st.alerts))
	for _, a := range st.alerts {
		items = append(items, TableItem{
			ID:           a.ID,
			Title:        a.Payload.Title,
			Recipients:   a.Payload.RecipientCount(),
			ScheduledFor: a.Payload.Schedule(),
			SentAt:       a.SentAt,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SentAt.Equal(items[j].SentAt) {
			return items[i].ID > items[j].ID
		}
		return items[i].SentAt.After(items[j].SentAt)
	})
	return items, nil
}

// state is the reduced view of the log.
type state struct {
	alerts map[string]*Alert
}

// Apply reduces one event into the state.
func (st *state) Apply(ev Event) {
	switch ev.Action {
	case nats.ActionSent:
		var p wizard.Payload
		if err := json.Unmarshal(ev.Data, &p); err != nil {
			logger.Warn("Skipping sent event with bad payload (alert=%s): %v", ev.AlertID, err)
			return
		}
		st.alerts[ev.AlertID] = &Alert{ID: ev.AlertID, SentAt: ev.Timestamp, Payload: p}
	case nats.ActionDeleted:
		delete(st.alerts, ev.AlertID)
	}
}

// load reads the whole alert log and reduces it.
func (s *Store) load(ctx context.Context) (*state, error) {
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SubjectForType(nats.EventTypeAlert),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	st := &state{alerts: make(map[string]*Alert)}

	const batchSize = 1000
	total, malformed := 0, 0
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			total++
			var ev Event
			if err := json.Unmarshal(msg.Data(), &ev); err != nil {
				malformed++
				_ = msg.Ack()
				continue
			}
			if ev.ID == "" {
				if meta, err := msg.Metadata(); err == nil {
					ev.ID = strconv.FormatUint(meta.Sequence.Stream, 10)
				}
			}
			st.Apply(ev)
			_ = msg.Ack()
		}

		if n < batchSize {
			break
		}
	}

	if malformed > 0 {
		s.log.Warn("skipped %d malformed events", malformed)
	}
	s.log.Debug("history loaded: %d events, %d alerts", total, len(st.alerts))
	return st, nil
}
