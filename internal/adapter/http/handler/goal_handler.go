package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gofinance/internal/adapter/http/dto"
	"github.com/iho/gofinance/internal/domain"
	"github.com/iho/gofinance/internal/usecase"
)

// GoalService defines the behavior needed by GoalHandler.
type GoalService interface {
	CreateGoal(ctx context.Context, input usecase.CreateGoalInput) (*domain.GoalAggregate, error)
	GetGoal(ctx context.Context, userID, goalID string) (*domain.GoalAggregate, error)
	ListGoals(ctx context.Context, input usecase.ListGoalsInput) ([]*domain.Goal, error)
	ListGoalEntries(ctx context.Context, userID, goalID string) ([]domain.LedgerEntry, error)
	ListGoalEvents(ctx context.Context, input usecase.ListGoalEventsInput) ([]*domain.OutboxEvent, error)
	UpdateGoal(ctx context.Context, input usecase.UpdateGoalInput) (*domain.GoalAggregate, error)
	DeleteGoal(ctx context.Context, userID, goalID string) error
	ContributeToGoal(ctx context.Context, input usecase.MoneyMovementInput) (*usecase.MoneyMovementResult, error)
	WithdrawFromGoal(ctx context.Context, input usecase.MoneyMovementInput) (*usecase.MoneyMovementResult, error)
	CorrectGoalEntry(ctx context.Context, input usecase.CorrectEntryInput) (*usecase.MoneyMovementResult, error)
	RemoveGoalEntry(ctx context.Context, userID, goalID, entryID string) (*domain.Goal, error)
}

// GoalHandler handles goal-related HTTP requests.
type GoalHandler struct {
	goalUC GoalService
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalUC GoalService) *GoalHandler {
	return &GoalHandler{goalUC: goalUC}
}

// Create creates a new goal.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(userID)
	if err != nil {
		writeDomainError(w, err, "invalid goal")
		return
	}

	aggregate, err := h.goalUC.CreateGoal(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to create goal")
		return
	}

	writeJSON(w, http.StatusCreated, dto.GoalFromAggregate(aggregate))
}

// Get retrieves a goal with its progress.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	aggregate, err := h.goalUC.GetGoal(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to get goal")
		return
	}

	writeJSON(w, http.StatusOK, dto.GoalFromAggregate(aggregate))
}

// List lists the caller's goals.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))

	goals, err := h.goalUC.ListGoals(r.Context(), usecase.ListGoalsInput{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, err, "failed to list goals")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.GoalResponse]{
		Items:  dto.GoalsFromDomain(goals),
		Limit:  limit,
		Offset: offset,
	})
}

// Update applies a partial update to a goal.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.UpdateGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "invalid goal update")
		return
	}

	aggregate, err := h.goalUC.UpdateGoal(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to update goal")
		return
	}

	writeJSON(w, http.StatusOK, dto.GoalFromAggregate(aggregate))
}

// Delete soft-deletes a goal.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.goalUC.DeleteGoal(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err, "failed to delete goal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Contribute adds money to a goal.
func (h *GoalHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	h.moveMoney(w, r, h.goalUC.ContributeToGoal, "failed to contribute")
}

// Withdraw takes money out of a goal.
func (h *GoalHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.moveMoney(w, r, h.goalUC.WithdrawFromGoal, "failed to withdraw")
}

type movementFunc func(ctx context.Context, input usecase.MoneyMovementInput) (*usecase.MoneyMovementResult, error)

func (h *GoalHandler) moveMoney(w http.ResponseWriter, r *http.Request, move movementFunc, failure string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.MoneyMovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "invalid amount")
		return
	}

	result, err := move(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, failure)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromResult(result))
}

// ListEntries lists the ledger entries of a goal.
func (h *GoalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	entries, err := h.goalUC.ListGoalEntries(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to list entries")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListEvents lists the domain events recorded for a goal.
func (h *GoalHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := domain.ValidatePagination(parseIntQuery(r, "limit", 20), parseIntQuery(r, "offset", 0))

	events, err := h.goalUC.ListGoalEvents(r.Context(), usecase.ListGoalEventsInput{
		UserID: userID,
		GoalID: chi.URLParam(r, "id"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDomainError(w, err, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.EventResponse]{
		Items:  dto.EventsFromDomain(events),
		Limit:  limit,
		Offset: offset,
	})
}

// CorrectEntry corrects the amount or labels of a ledger entry.
func (h *GoalHandler) CorrectEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req dto.CorrectEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput(userID, chi.URLParam(r, "id"), chi.URLParam(r, "entryID"))
	if err != nil {
		writeDomainError(w, err, "invalid correction")
		return
	}

	result, err := h.goalUC.CorrectGoalEntry(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to correct entry")
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromResult(result))
}

// RemoveEntry removes a ledger entry and reverses its effect on the balance.
func (h *GoalHandler) RemoveEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	goal, err := h.goalUC.RemoveGoalEntry(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "entryID"))
	if err != nil {
		writeDomainError(w, err, "failed to remove entry")
		return
	}

	writeJSON(w, http.StatusOK, dto.GoalFromDomain(goal))
}
