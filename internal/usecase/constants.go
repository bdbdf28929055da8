package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyInFlight is stored under a key while its first request runs.
	IdempotencyInFlight = "processing"

	// OpeningBalanceName names the contribution recorded for an initial amount.
	OpeningBalanceName = "Opening balance"
)
