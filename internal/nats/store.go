package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding every alertr event.
	StreamName = "alertr_events"

	subjectRoot = "alertr"

	// EventTypeAlert is the only event type today; subjects leave room for more.
	EventTypeAlert = "alerts"

	ActionSent    = "sent"
	ActionDeleted = "deleted"
)

// SubjectForType returns the wildcard subject for all events of a type.
// Example: "alertr.alerts.>"
func SubjectForType(eventType string) string {
	return fmt.Sprintf("%s.%s.>", subjectRoot, eventType)
}

// SubjectForEvent returns the subject of one action.
// Example: "alertr.alerts.sent"
func SubjectForEvent(eventType, action string) string {
	return fmt.Sprintf("%s.%s.%s", subjectRoot, eventType, action)
}

// SetupStream creates or updates the alertr event stream. A non-positive
// retention keeps events forever.
func SetupStream(ctx context.Context, js jetstream.JetStream, retention time.Duration) (jetstream.Stream, error) {
	cfg := jetstream.StreamConfig{
		Name:     StreamName,
		Subjects: []string{subjectRoot + ".>"},
		Storage:  jetstream.FileStorage,
	}
	if retention > 0 {
		cfg.MaxAge = retention
	}
	return js.CreateOrUpdateStream(ctx, cfg)
}
