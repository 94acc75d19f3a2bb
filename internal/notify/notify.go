// Package notify fans domain events out to the members of a pairing.
// Delivery is fire-and-forget and at most once: publishers never see errors.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const (
	EventGoalCreated      = "goal:created"
	EventGoalUpdated      = "goal:updated"
	EventGoalCompleted    = "goal:completed"
	EventLogAdded         = "log:added"
	EventBetPlaced        = "bet:placed"
	EventChallengeCreated = "challenge:created"
	EventChallengeUpdated = "challenge:updated"
)

type Notifier interface {
	Publish(ctx context.Context, pairingID, event string, payload any)
}

// Event is the wire shape delivered to subscribers.
type Event struct {
	Name      string    `json:"event"`
	PairingID string    `json:"pairingId"`
	Payload   any       `json:"payload"`
	At        time.Time `json:"at"`
}

func encode(pairingID, event string, payload any, at time.Time) ([]byte, error) {
	return json.Marshal(Event{
		Name:      event,
		PairingID: pairingID,
		Payload:   payload,
		At:        at,
	})
}

// Fanout publishes every event to all notifiers in order.
type Fanout []Notifier

func (f Fanout) Publish(ctx context.Context, pairingID, event string, payload any) {
	for _, n := range f {
		n.Publish(ctx, pairingID, event, payload)
	}
}

// LogNotifier records events in the application log.
type LogNotifier struct{}

func (LogNotifier) Publish(ctx context.Context, pairingID, event string, _ any) {
	slog.DebugContext(ctx, "event published", "event", event, "pairing_id", pairingID)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) {}
