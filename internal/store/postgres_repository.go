/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains all the SQL needed for the users and
 * credit_transactions tables, including the atomic settle-and-credit update
 * that guards against double-crediting.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/imagify/credits-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadySettled      = errors.New("transaction already settled")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateUser inserts a new user row and returns it with its generated fields.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (id, name, email, password_hash, credit_balance)
        VALUES ($1, $2, $3, $4, 0)
        RETURNING id, name, email, password_hash, credit_balance, created_at`

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	var created domain.User
	err := r.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash).Scan(
		&created.ID, &created.Name, &created.Email, &created.PasswordHash, &created.CreditBalance, &created.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation (email)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &created, nil
}

// FindUserByEmail retrieves a user by email, case-insensitively.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, name, email, password_hash, credit_balance, created_at
              FROM users WHERE lower(btrim(email)) = lower(btrim($1))`
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreditBalance, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID retrieves a user by primary key.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	query := `SELECT id, name, email, password_hash, credit_balance, created_at
              FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreditBalance, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateTransaction inserts a new pending ledger row and returns it.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx *domain.CreditTransaction) (*domain.CreditTransaction, error) {
	query := `
        INSERT INTO credit_transactions (id, user_id, plan, credits, amount, settled)
        VALUES ($1, $2, $3, $4, $5, false)
        RETURNING id, user_id, plan, credits, amount, settled, created_at`

	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	var created domain.CreditTransaction
	err := r.db.QueryRow(ctx, query, tx.ID, tx.UserID, tx.Plan, tx.Credits, tx.Amount).Scan(
		&created.ID, &created.UserID, &created.Plan, &created.Credits, &created.Amount, &created.Settled, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create credit transaction: %w", err)
	}
	return &created, nil
}

// FindTransactionByID retrieves one ledger row by primary key.
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, transactionID uuid.UUID) (*domain.CreditTransaction, error) {
	var tx domain.CreditTransaction
	query := `SELECT id, user_id, plan, credits, amount, settled, created_at
              FROM credit_transactions WHERE id = $1`
	err := r.db.QueryRow(ctx, query, transactionID).Scan(
		&tx.ID, &tx.UserID, &tx.Plan, &tx.Credits, &tx.Amount, &tx.Settled, &tx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindTransactionsByUserID lists a user's purchases, newest first.
func (r *PostgresRepository) FindTransactionsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.CreditTransaction, error) {
	query := `SELECT id, user_id, plan, credits, amount, settled, created_at
              FROM credit_transactions WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []domain.CreditTransaction
	for rows.Next() {
		var tx domain.CreditTransaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Plan, &tx.Credits, &tx.Amount, &tx.Settled, &tx.CreatedAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SettleTransactionAndCredit flips the settled flag and credits the owner's
// balance inside one database transaction. The settle update is scoped by
// `settled = false`, so of any number of concurrent callers exactly one sees
// a matched row; the rest observe the already-settled state and mutate
// nothing.
func (r *PostgresRepository) SettleTransactionAndCredit(ctx context.Context, transactionID uuid.UUID) (*domain.CreditTransaction, error) {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin settle transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	var settled domain.CreditTransaction
	err = dbTx.QueryRow(ctx, `
        UPDATE credit_transactions
        SET settled = true
        WHERE id = $1 AND settled = false
        RETURNING id, user_id, plan, credits, amount, settled, created_at`,
		transactionID,
	).Scan(&settled.ID, &settled.UserID, &settled.Plan, &settled.Credits, &settled.Amount, &settled.Settled, &settled.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a replayed settlement from a forged reference.
			var exists bool
			checkErr := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM credit_transactions WHERE id = $1)`, transactionID).Scan(&exists)
			if checkErr != nil {
				return nil, checkErr
			}
			if exists {
				return nil, ErrAlreadySettled
			}
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}

	result, err := dbTx.Exec(ctx, `
        UPDATE users
        SET credit_balance = credit_balance + $1
        WHERE id = $2`,
		settled.Credits, settled.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}
	return &settled, nil
}
