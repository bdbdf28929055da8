package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gofinance/internal/domain"
)

// BudgetRepository implements usecase.BudgetRepository.
type BudgetRepository struct {
	db querier
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return newBudgetRepository(pool)
}

func newBudgetRepository(db querier) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// GetByID retrieves a budget by ID.
func (r *BudgetRepository) GetByID(ctx context.Context, id string) (*domain.Budget, error) {
	query := `
		SELECT id, user_id, name, limit_amount, currency, period_start, period_end, created_at, updated_at
		FROM budgets
		WHERE id = $1
	`

	var (
		b        domain.Budget
		limit    pgtype.Numeric
		currency string
	)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.UserID,
		&b.Name,
		&limit,
		&currency,
		&b.PeriodStart,
		&b.PeriodEnd,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}

	b.Limit = domain.NewMoney(numericToDecimal(limit), domain.Currency(currency))

	return &b, nil
}

// SumSpending totals the user's spend entries in [from, to).
func (r *BudgetRepository) SumSpending(ctx context.Context, userID string, currency domain.Currency, from, to time.Time) (domain.Money, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE owner_user_id = $1
		  AND kind = $2
		  AND currency = $3
		  AND created_at >= $4
		  AND created_at < $5
	`

	var total pgtype.Numeric

	err := r.db.QueryRow(ctx, query,
		userID,
		string(domain.EntryKindSpend),
		string(currency),
		timeToPgTimestamptz(from),
		timeToPgTimestamptz(to),
	).Scan(&total)
	if err != nil {
		return domain.Money{}, err
	}

	return domain.NewMoney(numericToDecimal(total), currency), nil
}
