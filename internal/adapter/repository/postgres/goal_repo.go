package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gofinance/internal/domain"
	"github.com/iho/gofinance/internal/usecase"
)

const goalTitleConstraint = "goals_user_title_active_key"

const goalColumns = `id, user_id, title, description, target_amount, currency, current_amount, due_date, created_at, updated_at, deleted_at`

const entryColumns = `e.id, e.owner_user_id, e.kind, e.amount, e.currency, e.name, e.description, e.recurrence_interval_days, e.created_at, e.updated_at`

// GoalRepository implements usecase.GoalRepository.
type GoalRepository struct {
	db querier
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return newGoalRepository(pool)
}

func newGoalRepository(db querier) *GoalRepository {
	return &GoalRepository{db: db}
}

// GetByID loads a non-deleted goal with its ledger.
func (r *GoalRepository) GetByID(ctx context.Context, id string) (*domain.GoalAggregate, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND deleted_at IS NULL`

	return r.loadAggregate(ctx, r.db, query, id)
}

// GetByIDForUpdate loads a goal and locks its row until tx ends.
func (r *GoalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.GoalAggregate, error) {
	q, err := txQuerier(tx)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`

	return r.loadAggregate(ctx, q, query, id)
}

// FindByTitle returns the user's live goal with the exact title, or nil.
func (r *GoalRepository) FindByTitle(ctx context.Context, userID, title string) (*domain.GoalAggregate, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 AND title = $2 AND deleted_at IS NULL`

	agg, err := r.loadAggregate(ctx, r.db, query, userID, title)
	if errors.Is(err, domain.ErrGoalNotFound) {
		return nil, nil
	}

	return agg, err
}

// ListByUser lists the user's live goals, newest first.
func (r *GoalRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]*domain.Goal, 0, limit)
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}

	return goals, rows.Err()
}

// Save upserts the goal row and writes only the pending ledger changes.
func (r *GoalRepository) Save(ctx context.Context, tx usecase.Transaction, aggregate *domain.GoalAggregate) error {
	q, err := txQuerier(tx)
	if err != nil {
		return err
	}

	if err := r.upsertGoal(ctx, q, aggregate.Goal); err != nil {
		return err
	}

	goalID := aggregate.Goal.ID
	contributions := aggregate.Contributions

	if removed := contributions.RemovedIDs(); len(removed) > 0 {
		if _, err := q.Exec(ctx, `DELETE FROM goal_entries WHERE goal_id = $1 AND entry_id = ANY($2)`, goalID, removed); err != nil {
			return fmt.Errorf("failed to detach entries: %w", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM ledger_entries WHERE id = ANY($1)`, removed); err != nil {
			return fmt.Errorf("failed to delete entries: %w", err)
		}
	}

	for _, entry := range contributions.AddedItems() {
		if err := insertEntry(ctx, q, goalID, entry); err != nil {
			return err
		}
	}

	for _, entry := range contributions.UpdatedItems() {
		if err := updateEntry(ctx, q, entry); err != nil {
			return err
		}
	}

	return nil
}

func (r *GoalRepository) upsertGoal(ctx context.Context, q querier, g *domain.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, title, description, target_amount, currency, current_amount, due_date, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			target_amount = EXCLUDED.target_amount,
			currency = EXCLUDED.currency,
			current_amount = EXCLUDED.current_amount,
			due_date = EXCLUDED.due_date,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`

	var target pgtype.Numeric
	if g.TargetAmount != nil {
		target = decimalToNumeric(g.TargetAmount.Amount)
	}

	_, err := q.Exec(ctx, query,
		g.ID,
		g.UserID,
		g.Title,
		g.Description,
		target,
		string(g.CurrentAmount.Currency),
		decimalToNumeric(g.CurrentAmount.Amount),
		nullableTimestamptz(g.DueDate),
		timeToPgTimestamptz(g.CreatedAt),
		timeToPgTimestamptz(g.UpdatedAt),
		nullableTimestamptz(g.DeletedAt),
	)
	if isUniqueViolation(err, goalTitleConstraint) {
		return domain.ErrGoalTitleConflict
	}

	return err
}

func insertEntry(ctx context.Context, q querier, goalID string, e domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, owner_user_id, kind, amount, currency, name, description, recurrence_interval_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		e.ID,
		e.OwnerUserID,
		string(e.Kind),
		decimalToNumeric(e.Amount.Amount),
		string(e.Amount.Currency),
		e.Name,
		e.Description,
		e.RecurrenceIntervalDays,
		timeToPgTimestamptz(e.CreatedAt),
		timeToPgTimestamptz(e.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateItem, e.ID)
		}
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if _, err := q.Exec(ctx, `INSERT INTO goal_entries (goal_id, entry_id) VALUES ($1, $2)`, goalID, e.ID); err != nil {
		return fmt.Errorf("failed to attach entry: %w", err)
	}

	return nil
}

func updateEntry(ctx context.Context, q querier, e domain.LedgerEntry) error {
	query := `
		UPDATE ledger_entries
		SET amount = $2, name = $3, description = $4, updated_at = $5
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		e.ID,
		decimalToNumeric(e.Amount.Amount),
		e.Name,
		e.Description,
		timeToPgTimestamptz(e.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, e.ID)
	}

	return nil
}

func (r *GoalRepository) loadAggregate(ctx context.Context, q querier, query string, args ...any) (*domain.GoalAggregate, error) {
	goal, err := scanGoal(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}

	entries, err := r.loadEntries(ctx, q, goal.ID)
	if err != nil {
		return nil, err
	}

	return domain.NewGoalAggregate(goal, entries)
}

func (r *GoalRepository) loadEntries(ctx context.Context, q querier, goalID string) ([]domain.LedgerEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries e
		JOIN goal_entries ge ON ge.entry_id = e.id
		WHERE ge.goal_id = $1
		ORDER BY e.created_at, e.id
	`

	rows, err := q.Query(ctx, query, goalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanGoal(row pgx.Row) (*domain.Goal, error) {
	var (
		g         domain.Goal
		target    pgtype.Numeric
		current   pgtype.Numeric
		currency  string
		dueDate   pgtype.Timestamptz
		deletedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Title,
		&g.Description,
		&target,
		&currency,
		&current,
		&dueDate,
		&g.CreatedAt,
		&g.UpdatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	g.CurrentAmount = domain.NewMoney(numericToDecimal(current), domain.Currency(currency))
	if target.Valid {
		t := domain.NewMoney(numericToDecimal(target), domain.Currency(currency))
		g.TargetAmount = &t
	}
	g.DueDate = pgTimestamptzToPtr(dueDate)
	g.DeletedAt = pgTimestamptzToPtr(deletedAt)

	return &g, nil
}

func scanEntry(row pgx.Row) (domain.LedgerEntry, error) {
	var (
		e        domain.LedgerEntry
		kind     string
		amount   pgtype.Numeric
		currency string
	)

	err := row.Scan(
		&e.ID,
		&e.OwnerUserID,
		&kind,
		&amount,
		&currency,
		&e.Name,
		&e.Description,
		&e.RecurrenceIntervalDays,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	e.Kind = domain.EntryKind(kind)
	e.Amount = domain.NewMoney(numericToDecimal(amount), domain.Currency(currency))

	return e, nil
}
