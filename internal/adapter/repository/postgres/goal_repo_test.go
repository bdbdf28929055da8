package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"

	"github.com/iho/gofinance/internal/domain"
)

var (
	goalCols  = []string{"id", "user_id", "title", "description", "target_amount", "currency", "current_amount", "due_date", "created_at", "updated_at", "deleted_at"}
	entryCols = []string{"id", "owner_user_id", "kind", "amount", "currency", "name", "description", "recurrence_interval_days", "created_at", "updated_at"}
	repoNow   = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func numeric(s string) pgtype.Numeric {
	return decimalToNumeric(decimal.RequireFromString(s))
}

func goalRow(target pgtype.Numeric, current string) *pgxmock.Rows {
	return pgxmock.NewRows(goalCols).AddRow(
		"goal-1", "user-1", "Trip", (*string)(nil), target, "VND", numeric(current),
		pgtype.Timestamptz{}, repoNow, repoNow, pgtype.Timestamptz{},
	)
}

func TestGoalRepositoryGetByID(t *testing.T) {
	pool := newMockPool(t)
	repo := newGoalRepository(pool)

	pool.ExpectQuery(`SELECT .+ FROM goals WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs("goal-1").
		WillReturnRows(goalRow(numeric("5000"), "600"))
	pool.ExpectQuery(`FROM ledger_entries e\s+JOIN goal_entries ge`).
		WithArgs("goal-1").
		WillReturnRows(pgxmock.NewRows(entryCols).
			AddRow("e1", "user-1", "contribution", numeric("1000"), "VND", "Contribution", (*string)(nil), 0, repoNow, repoNow).
			AddRow("e2", "user-1", "withdrawal", numeric("400"), "VND", "Withdrawal", (*string)(nil), 0, repoNow, repoNow))

	agg, err := repo.GetByID(context.Background(), "goal-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !agg.Goal.CurrentAmount.Equal(domain.NewMoney(decimal.NewFromInt(600), domain.CurrencyVND)) {
		t.Errorf("unexpected balance %s", agg.Goal.CurrentAmount)
	}
	if agg.Goal.TargetAmount == nil || agg.Goal.TargetAmount.Currency != domain.CurrencyVND {
		t.Errorf("unexpected target %v", agg.Goal.TargetAmount)
	}
	if agg.Goal.DueDate != nil || agg.Goal.DeletedAt != nil {
		t.Errorf("expected nil due date and deleted at")
	}
	if agg.Contributions.Len() != 2 || agg.Contributions.HasChanges() {
		t.Errorf("expected 2 clean entries, got %d (changes=%v)", agg.Contributions.Len(), agg.Contributions.HasChanges())
	}

	ledger, err := agg.LedgerBalance()
	if err != nil || !ledger.Equal(agg.Goal.CurrentAmount) {
		t.Errorf("ledger %s does not match balance %s (err=%v)", ledger, agg.Goal.CurrentAmount, err)
	}

	assertExpectations(t, pool)
}

func TestGoalRepositoryGetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	repo := newGoalRepository(pool)

	pool.ExpectQuery(`FROM goals WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(goalCols))

	_, err := repo.GetByID(context.Background(), "missing")
	if err != domain.ErrGoalNotFound {
		t.Fatalf("expected ErrGoalNotFound, got %v", err)
	}
}

func TestGoalRepositoryGetByIDForUpdateLocksRow(t *testing.T) {
	pool := newMockPool(t)
	repo := newGoalRepository(pool)
	tx := beginMockTx(t, pool)

	pool.ExpectQuery(`FROM goals WHERE id = \$1 AND deleted_at IS NULL FOR UPDATE`).
		WithArgs("goal-1").
		WillReturnRows(goalRow(pgtype.Numeric{}, "0"))
	pool.ExpectQuery(`FROM ledger_entries e`).
		WithArgs("goal-1").
		WillReturnRows(pgxmock.NewRows(entryCols))

	agg, err := repo.GetByIDForUpdate(context.Background(), tx, "goal-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.Goal.TargetAmount != nil {
		t.Errorf("expected no target, got %v", agg.Goal.TargetAmount)
	}

	assertExpectations(t, pool)
}

func TestGoalRepositoryFindByTitleNone(t *testing.T) {
	pool := newMockPool(t)
	repo := newGoalRepository(pool)

	pool.ExpectQuery(`FROM goals WHERE user_id = \$1 AND title = \$2 AND deleted_at IS NULL`).
		WithArgs("user-1", "Trip").
		WillReturnRows(pgxmock.NewRows(goalCols))

	agg, err := repo.FindByTitle(context.Background(), "user-1", "Trip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg != nil {
		t.Fatalf("expected no goal, got %+v", agg.Goal)
	}
}

func TestGoalRepositoryListByUser(t *testing.T) {
	pool := newMockPool(t)
	repo := newGoalRepository(pool)

	pool.ExpectQuery(`FROM goals\s+WHERE user_id = \$1 AND deleted_at IS NULL\s+ORDER BY created_at DESC`).
		WithArgs("user-1", 20, 0).
		WillReturnRows(goalRow(numeric("5000"), "100"))

	goals, err := repo.ListByUser(context.Background(), "user-1", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(goals) != 1 || goals[0].ID != "goal-1" {
		t.Fatalf("unexpected goals: %+v", goals)
	}
}

func TestGoalRepositorySaveWritesPendingChanges(t *testing.T) {
	pool := newMockPool(t)
	repo := newGoalRepository(pool)
	tx := beginMockTx(t, pool)

	vnd := func(v int64) domain.Money { return domain.NewMoney(decimal.NewFromInt(v), domain.CurrencyVND) }
	seed := func(id string, kind domain.EntryKind, amount int64) domain.LedgerEntry {
		return domain.LedgerEntry{ID: id, OwnerUserID: "user-1", Amount: vnd(amount), Kind: kind, Name: "seed", CreatedAt: repoNow, UpdatedAt: repoNow}
	}

	goal := &domain.Goal{ID: "goal-1", UserID: "user-1", Title: "Trip", CurrentAmount: vnd(700), CreatedAt: repoNow, UpdatedAt: repoNow}
	agg, err := domain.NewGoalAggregate(goal, []domain.LedgerEntry{
		seed("e1", domain.EntryKindContribution, 1000),
		seed("e2", domain.EntryKindWithdrawal, 300),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	later := repoNow.Add(time.Hour)
	if _, err := agg.RemoveEntry("e2", later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	amount := vnd(900)
	if _, err := agg.CorrectEntry("e1", domain.EntryCorrection{Amount: &amount}, later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := agg.Contribute(domain.MoneyMovement{EntryID: "e3", Amount: decimal.NewFromInt(50)}, later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pool.ExpectExec(`INSERT INTO goals .+ ON CONFLICT \(id\) DO UPDATE`).
		WithArgs("goal-1", "user-1", "Trip", pgxmock.AnyArg(), pgxmock.AnyArg(), "VND", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec(`DELETE FROM goal_entries WHERE goal_id = \$1 AND entry_id = ANY\(\$2\)`).
		WithArgs("goal-1", []string{"e2"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	pool.ExpectExec(`DELETE FROM ledger_entries WHERE id = ANY\(\$1\)`).
		WithArgs([]string{"e2"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	pool.ExpectExec(`INSERT INTO ledger_entries`).
		WithArgs("e3", "user-1", "contribution", pgxmock.AnyArg(), "VND", "Contribution", pgxmock.AnyArg(), 0, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec(`INSERT INTO goal_entries`).
		WithArgs("goal-1", "e3").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	pool.ExpectExec(`UPDATE ledger_entries`).
		WithArgs("e1", pgxmock.AnyArg(), "seed", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.Save(context.Background(), tx, agg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, pool)
}

func TestGoalRepositorySaveTitleConflict(t *testing.T) {
	pool := newMockPool(t)
	repo := newGoalRepository(pool)
	tx := beginMockTx(t, pool)

	goal := &domain.Goal{ID: "goal-2", UserID: "user-1", Title: "Trip", CurrentAmount: domain.ZeroMoney(domain.CurrencyUSD)}
	agg, _ := domain.NewGoalAggregate(goal, nil)

	pool.ExpectExec(`INSERT INTO goals`).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: goalTitleConstraint})

	err := repo.Save(context.Background(), tx, agg)
	if !errors.Is(err, domain.ErrGoalTitleConflict) {
		t.Fatalf("expected ErrGoalTitleConflict, got %v", err)
	}
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "1000.5", "0.00000001", "123456789012.34"} {
		got := numericToDecimal(decimalToNumeric(decimal.RequireFromString(s)))
		if !got.Equal(decimal.RequireFromString(s)) {
			t.Errorf("round trip of %s gave %s", s, got)
		}
	}

	if !numericToDecimal(pgtype.Numeric{}).IsZero() {
		t.Error("expected NULL numeric to read as zero")
	}
}
