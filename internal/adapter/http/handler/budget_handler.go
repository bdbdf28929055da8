package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gofinance/internal/adapter/http/dto"
	"github.com/iho/gofinance/internal/usecase"
)

// BudgetService defines the behavior needed by BudgetHandler.
type BudgetService interface {
	GetBudgetSpending(ctx context.Context, userID, budgetID string) (*usecase.BudgetSpendingResult, error)
}

// BudgetHandler handles budget projection requests.
type BudgetHandler struct {
	budgetUC BudgetService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetUC BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetUC: budgetUC}
}

// Spending returns how much of the budget has been spent in its period.
func (h *BudgetHandler) Spending(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.budgetUC.GetBudgetSpending(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "failed to get budget spending")
		return
	}

	writeJSON(w, http.StatusOK, dto.BudgetSpendingFromResult(result))
}
