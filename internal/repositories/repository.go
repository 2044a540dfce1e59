package repositories

import "context"

// Repository aggregates the per-entity repositories behind one interface.
type Repository interface {
	User() UserRepository
	Problem() ProblemRepository
	Confirmation() ConfirmationRepository

	// WithTransaction runs fn against a transaction-bound Repository;
	// returning an error rolls the transaction back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}
