package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
	"github.com/iho/gofinance/internal/usecase"
)

// MoneyResponse is an amount with its currency.
type MoneyResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// MoneyFromDomain converts domain money to response.
func MoneyFromDomain(m domain.Money) MoneyResponse {
	return MoneyResponse{Amount: m.Amount, Currency: string(m.Currency)}
}

// ProgressResponse is the goal progress projection.
type ProgressResponse struct {
	Percent    decimal.Decimal `json:"percent"`
	Remaining  MoneyResponse   `json:"remaining"`
	IsAchieved bool            `json:"is_achieved"`
}

// GoalResponse represents a goal in API responses.
type GoalResponse struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Title         string            `json:"title"`
	Description   *string           `json:"description,omitempty"`
	TargetAmount  *MoneyResponse    `json:"target_amount,omitempty"`
	CurrentAmount MoneyResponse     `json:"current_amount"`
	DueDate       *time.Time        `json:"due_date,omitempty"`
	Progress      *ProgressResponse `json:"progress,omitempty"`
	EntryCount    *int              `json:"entry_count,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// GoalFromDomain converts domain goal to response.
func GoalFromDomain(g *domain.Goal) *GoalResponse {
	resp := &GoalResponse{
		ID:            g.ID,
		UserID:        g.UserID,
		Title:         g.Title,
		Description:   g.Description,
		CurrentAmount: MoneyFromDomain(g.CurrentAmount),
		DueDate:       g.DueDate,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}

	if g.TargetAmount != nil {
		target := MoneyFromDomain(*g.TargetAmount)
		resp.TargetAmount = &target
	}

	if p := g.Progress(); p != nil {
		resp.Progress = &ProgressResponse{
			Percent:    p.Percent,
			Remaining:  MoneyFromDomain(p.Remaining),
			IsAchieved: p.IsAchieved,
		}
	}

	return resp
}

// GoalFromAggregate converts an aggregate to response, including its entry count.
func GoalFromAggregate(a *domain.GoalAggregate) *GoalResponse {
	resp := GoalFromDomain(a.Goal)
	count := a.Contributions.Len()
	resp.EntryCount = &count
	return resp
}

// GoalsFromDomain converts domain goals to responses.
func GoalsFromDomain(goals []*domain.Goal) []*GoalResponse {
	result := make([]*GoalResponse, len(goals))
	for i, g := range goals {
		result[i] = GoalFromDomain(g)
	}
	return result
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID                     string        `json:"id"`
	Kind                   string        `json:"kind"`
	Amount                 MoneyResponse `json:"amount"`
	Name                   string        `json:"name"`
	Description            *string       `json:"description,omitempty"`
	RecurrenceIntervalDays int           `json:"recurrence_interval_days"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

// EntryFromDomain converts domain ledger entry to response.
func EntryFromDomain(e domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		ID:                     e.ID,
		Kind:                   string(e.Kind),
		Amount:                 MoneyFromDomain(e.Amount),
		Name:                   e.Name,
		Description:            e.Description,
		RecurrenceIntervalDays: e.RecurrenceIntervalDays,
		CreatedAt:              e.CreatedAt,
		UpdatedAt:              e.UpdatedAt,
	}
}

// EntriesFromDomain converts domain ledger entries to responses.
func EntriesFromDomain(entries []domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// EventResponse is one entry of a goal's event history.
type EventResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Payload     map[string]any `json:"payload"`
	CreatedAt   time.Time      `json:"created_at"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
}

// EventsFromDomain converts outbox events to responses.
func EventsFromDomain(events []*domain.OutboxEvent) []*EventResponse {
	result := make([]*EventResponse, len(events))
	for i, e := range events {
		result[i] = &EventResponse{
			ID:          e.ID,
			Type:        e.EventType,
			Payload:     e.Payload,
			CreatedAt:   e.CreatedAt,
			PublishedAt: e.PublishedAt,
		}
	}
	return result
}

// MovementResponse is returned by contributions, withdrawals and entry corrections.
type MovementResponse struct {
	Goal  *GoalResponse  `json:"goal"`
	Entry *EntryResponse `json:"entry"`
}

// MovementFromResult converts a use case result to response.
func MovementFromResult(r *usecase.MoneyMovementResult) *MovementResponse {
	return &MovementResponse{
		Goal:  GoalFromDomain(r.Goal),
		Entry: EntryFromDomain(r.Entry),
	}
}

// BudgetSpendingResponse is the budget spending projection.
type BudgetSpendingResponse struct {
	BudgetID     string          `json:"budget_id"`
	Name         string          `json:"name"`
	Limit        MoneyResponse   `json:"limit"`
	Spent        MoneyResponse   `json:"spent"`
	Remaining    MoneyResponse   `json:"remaining"`
	SpentPercent decimal.Decimal `json:"spent_percent"`
	IsOverBudget bool            `json:"is_over_budget"`
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
}

// BudgetSpendingFromResult converts a use case result to response.
func BudgetSpendingFromResult(r *usecase.BudgetSpendingResult) *BudgetSpendingResponse {
	return &BudgetSpendingResponse{
		BudgetID:     r.Budget.ID,
		Name:         r.Budget.Name,
		Limit:        MoneyFromDomain(r.Budget.Limit),
		Spent:        MoneyFromDomain(r.Spending.Spent),
		Remaining:    MoneyFromDomain(r.Spending.Remaining),
		SpentPercent: r.Spending.SpentPercent,
		IsOverBudget: r.Spending.IsOverBudget,
		PeriodStart:  r.Budget.PeriodStart,
		PeriodEnd:    r.Budget.PeriodEnd,
	}
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
