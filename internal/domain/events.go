package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeGoalCreated        = "goal.created"
	EventTypeGoalUpdated        = "goal.updated"
	EventTypeGoalDeleted        = "goal.deleted"
	EventTypeGoalContributed    = "goal.contributed"
	EventTypeGoalWithdrawn      = "goal.withdrawn"
	EventTypeGoalEntryCorrected = "goal.entry_corrected"
	EventTypeGoalEntryRemoved   = "goal.entry_removed"
)

// Aggregate types
const (
	AggregateTypeGoal = "goal"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// GoalChangedEvent is the payload for goal lifecycle events.
type GoalChangedEvent struct {
	GoalID        string  `json:"goal_id"`
	UserID        string  `json:"user_id"`
	Title         string  `json:"title"`
	CurrentAmount string  `json:"current_amount"`
	TargetAmount  *string `json:"target_amount,omitempty"`
	Currency      string  `json:"currency"`
	EventAt       string  `json:"event_at"`
}

// GoalMovementEvent is the payload for contribution, withdrawal and entry correction events.
type GoalMovementEvent struct {
	GoalID       string `json:"goal_id"`
	UserID       string `json:"user_id"`
	EntryID      string `json:"entry_id"`
	Kind         string `json:"kind"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	BalanceAfter string `json:"balance_after"`
	EventAt      string `json:"event_at"`
}

// NewGoalChangedEvent builds the payload for a goal lifecycle event.
func NewGoalChangedEvent(g *Goal, at time.Time) GoalChangedEvent {
	ev := GoalChangedEvent{
		GoalID:        g.ID,
		UserID:        g.UserID,
		Title:         g.Title,
		CurrentAmount: g.CurrentAmount.Amount.String(),
		Currency:      string(g.CurrentAmount.Currency),
		EventAt:       at.UTC().Format(time.RFC3339Nano),
	}
	if g.TargetAmount != nil {
		t := g.TargetAmount.Amount.String()
		ev.TargetAmount = &t
	}
	return ev
}

// NewGoalMovementEvent builds the payload for a ledger movement on a goal.
func NewGoalMovementEvent(g *Goal, entry LedgerEntry, at time.Time) GoalMovementEvent {
	return GoalMovementEvent{
		GoalID:       g.ID,
		UserID:       g.UserID,
		EntryID:      entry.ID,
		Kind:         string(entry.Kind),
		Amount:       entry.Amount.Amount.String(),
		Currency:     string(entry.Amount.Currency),
		BalanceAfter: g.CurrentAmount.Amount.String(),
		EventAt:      at.UTC().Format(time.RFC3339Nano),
	}
}

// EventPayload converts an event struct into the map stored in the outbox.
func EventPayload(v any) map[string]any {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": "failed to marshal payload"}
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return map[string]any{"error": "failed to unmarshal payload"}
	}

	return result
}
