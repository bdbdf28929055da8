package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
	"github.com/iho/gofinance/internal/usecase"
)

func vnd(s string) domain.Money {
	return domain.NewMoney(decimal.RequireFromString(s), domain.CurrencyVND)
}

func TestGoalFromDomainWithTarget(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	target := vnd("1000")
	goal := &domain.Goal{
		ID:            "goal-1",
		UserID:        "user-1",
		Title:         "Laptop",
		TargetAmount:  &target,
		CurrentAmount: vnd("250"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	resp := GoalFromDomain(goal)

	if resp.ID != "goal-1" || resp.CurrentAmount.Currency != "VND" || !resp.CurrentAmount.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected goal response: %+v", resp)
	}
	if resp.TargetAmount == nil || !resp.TargetAmount.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected target amount, got %+v", resp.TargetAmount)
	}
	if resp.Progress == nil || !resp.Progress.Percent.Equal(decimal.NewFromInt(25)) || resp.Progress.IsAchieved {
		t.Fatalf("unexpected progress: %+v", resp.Progress)
	}
	if !resp.Progress.Remaining.Amount.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("remaining = %s, want 750", resp.Progress.Remaining.Amount)
	}
	if resp.EntryCount != nil {
		t.Fatalf("plain goal should not report entry count")
	}
}

func TestGoalFromDomainWithoutTarget(t *testing.T) {
	resp := GoalFromDomain(&domain.Goal{ID: "goal-1", CurrentAmount: vnd("10")})

	if resp.TargetAmount != nil || resp.Progress != nil {
		t.Fatalf("expected no target or progress, got %+v", resp)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "progress") || strings.Contains(string(data), "target_amount") {
		t.Fatalf("expected omitted fields, got %s", data)
	}
}

func TestGoalFromAggregate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.LedgerEntry{
		{ID: "e1", Kind: domain.EntryKindContribution, Amount: vnd("1000"), Name: "Contribution", CreatedAt: now, UpdatedAt: now},
		{ID: "e2", Kind: domain.EntryKindWithdrawal, Amount: vnd("400"), Name: "Withdrawal", CreatedAt: now, UpdatedAt: now},
	}
	agg, err := domain.NewGoalAggregate(&domain.Goal{ID: "goal-1", CurrentAmount: vnd("600")}, entries)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	resp := GoalFromAggregate(agg)
	if resp.EntryCount == nil || *resp.EntryCount != 2 {
		t.Fatalf("expected entry count 2, got %v", resp.EntryCount)
	}

	list := EntriesFromDomain(entries)
	if len(list) != 2 || list[1].Kind != "withdrawal" || list[1].Amount.Currency != "VND" {
		t.Fatalf("EntriesFromDomain returned %+v", list)
	}
}

func TestMovementFromResult(t *testing.T) {
	result := &usecase.MoneyMovementResult{
		Goal:  &domain.Goal{ID: "goal-1", CurrentAmount: vnd("1000")},
		Entry: domain.LedgerEntry{ID: "entry-1", Kind: domain.EntryKindContribution, Amount: vnd("1000")},
	}

	resp := MovementFromResult(result)
	if resp.Goal.ID != "goal-1" || resp.Entry.ID != "entry-1" || resp.Entry.Kind != "contribution" {
		t.Fatalf("unexpected movement response: %+v", resp)
	}
}

func TestBudgetSpendingFromResult(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	budget := &domain.Budget{
		ID:          "budget-1",
		Name:        "Groceries",
		Limit:       vnd("1000"),
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 1, 0),
	}
	spending, err := budget.Spending(vnd("1250"))
	if err != nil {
		t.Fatalf("spending: %v", err)
	}

	resp := BudgetSpendingFromResult(&usecase.BudgetSpendingResult{Budget: budget, Spending: spending})

	if !resp.IsOverBudget || !resp.SpentPercent.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("unexpected projection: %+v", resp)
	}
	if !resp.Remaining.Amount.Equal(decimal.NewFromInt(-250)) {
		t.Fatalf("remaining = %s, want -250", resp.Remaining.Amount)
	}
	if !resp.PeriodEnd.Equal(start.AddDate(0, 1, 0)) {
		t.Fatalf("unexpected period end %v", resp.PeriodEnd)
	}
}

func TestMoneyResponseJSON(t *testing.T) {
	data, err := json.Marshal(MoneyFromDomain(vnd("12.50")))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if string(data) != `{"amount":"12.5","currency":"VND"}` {
		t.Fatalf("unexpected json %s", data)
	}
}
