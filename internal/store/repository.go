/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract
 * for all data access operations required by the credits-service. Defining an
 * interface decouples the business logic from the PostgreSQL implementation
 * and lets tests substitute in-memory stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/imagify/credits-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Credit transaction methods
	CreateTransaction(ctx context.Context, tx *domain.CreditTransaction) (*domain.CreditTransaction, error)
	FindTransactionByID(ctx context.Context, transactionID uuid.UUID) (*domain.CreditTransaction, error)
	FindTransactionsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CreditTransaction, error)

	// SettleTransactionAndCredit marks the transaction settled and adds its
	// credits to the owning user's balance as one atomic unit. The settle is
	// a conditional update scoped by `settled = false`; when it matches no
	// row the call reports ErrAlreadySettled (or ErrTransactionNotFound) and
	// performs no mutation. Concurrent calls for the same transaction result
	// in exactly one credit application.
	SettleTransactionAndCredit(ctx context.Context, transactionID uuid.UUID) (*domain.CreditTransaction, error)
}
