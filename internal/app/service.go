/**
 * @description
 * This file contains the core business logic for the credits-service. The
 * Service layer orchestrates the plan catalog, the ledger repository, and the
 * payment gateway: it creates priced orders and, once the gateway confirms
 * settlement, applies the purchased credits to the owning user exactly once.
 *
 * @notes
 * - All failures cross this boundary as typed errors; the API layer maps them
 *   to stable user-safe messages. No error here terminates the process.
 * - No internal retries: webhook redelivery and client polling provide the
 *   retry loop, and the settled-flag idempotency gate makes that safe.
 */

package app

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/imagify/credits-service/internal/domain"
	"github.com/imagify/credits-service/internal/store"
	"github.com/imagify/credits-service/internal/token"
	"github.com/imagify/credits-service/pkg/rabbitmq"
	"github.com/imagify/credits-service/pkg/razorpay"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields         = errors.New("name, email and password are required")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMissingPlan           = errors.New("missing plan id")
	ErrUnknownPlan           = errors.New("unknown plan")
	ErrOrderCreationFailed   = errors.New("order creation failed")
	ErrPaymentNotConfirmed   = errors.New("payment not confirmed")
	ErrTooManyVerifyAttempts = errors.New("too many verification attempts")
)

const minPasswordLength = 8

// Gateway is the payment gateway surface the service depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*razorpay.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*razorpay.Order, error)
}

// VerifyRateLimiter bounds repeated verification attempts per subject.
type VerifyRateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Service provides the business logic for registration, authentication, and
// the credit purchase pipeline.
type Service struct {
	repo           store.Repository
	gateway        Gateway
	tokens         *token.Service
	producer       rabbitmq.Publisher
	plans          PlanCatalog
	currency       string
	subunitFactor  int64
	eventsExchange string

	verifyLimiter        VerifyRateLimiter
	verifyLimitPerMinute int
}

// NewService creates a new credits service with its dependencies.
func NewService(
	repo store.Repository,
	gateway Gateway,
	tokens *token.Service,
	producer rabbitmq.Publisher,
	plans PlanCatalog,
	currency string,
	subunitFactor int64,
	eventsExchange string,
) *Service {
	if subunitFactor <= 0 {
		subunitFactor = 100
	}
	return &Service{
		repo:           repo,
		gateway:        gateway,
		tokens:         tokens,
		producer:       producer,
		plans:          plans,
		currency:       currency,
		subunitFactor:  subunitFactor,
		eventsExchange: eventsExchange,
	}
}

// SetVerifyRateLimiter enables distributed rate limiting of verify calls.
func (s *Service) SetVerifyRateLimiter(limiter VerifyRateLimiter, limitPerMinute int) {
	s.verifyLimiter = limiter
	s.verifyLimitPerMinute = limitPerMinute
}

// Register creates a new identity and issues its first token.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	tok, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &domain.AuthResponse{
		Success: true,
		Token:   tok,
		User:    domain.PublicUser{Name: user.Name},
	}, nil
}

// Login authenticates an identity by email and password and issues a token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &domain.AuthResponse{
		Success: true,
		Token:   tok,
		User:    domain.PublicUser{Name: user.Name},
	}, nil
}

// GetCredits returns the authenticated user's balance and display name.
func (s *Service) GetCredits(ctx context.Context, subjectID string) (*domain.CreditsResponse, error) {
	userID, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, store.ErrUserNotFound
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.CreditsResponse{
		Success: true,
		Credits: user.CreditBalance,
		User:    domain.PublicUser{Name: user.Name},
	}, nil
}

// ListPurchases returns the authenticated user's purchase history, newest
// first.
func (s *Service) ListPurchases(ctx context.Context, subjectID string) ([]domain.CreditTransaction, error) {
	userID, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, store.ErrUserNotFound
	}
	return s.repo.FindTransactionsByUserID(ctx, userID)
}

// CreateOrder resolves the plan, records a pending ledger row, and asks the
// gateway to create the priced order. The ledger row is written first so the
// gateway order can carry its id as the receipt; if the gateway call then
// fails the pending row is left behind rather than rolled back, preserving
// the correlation for later inspection.
func (s *Service) CreateOrder(ctx context.Context, subjectID, planID string) (*razorpay.Order, error) {
	if strings.TrimSpace(planID) == "" {
		return nil, ErrMissingPlan
	}

	plan, err := s.plans.Resolve(planID)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(subjectID)
	if err != nil {
		return nil, store.ErrUserNotFound
	}

	tx, err := s.repo.CreateTransaction(ctx, &domain.CreditTransaction{
		UserID:  userID,
		Plan:    plan.Name,
		Credits: plan.Credits,
		Amount:  plan.Amount,
	})
	if err != nil {
		return nil, err
	}

	order, err := s.gateway.CreateOrder(ctx, plan.Amount*s.subunitFactor, s.currency, tx.ID.String())
	if err != nil {
		log.Printf("level=warn component=credits_service op=create_order transaction_id=%s msg=\"gateway order creation failed\" err=%v", tx.ID, err)
		return nil, ErrOrderCreationFailed
	}

	return order, nil
}

// VerifyPayment checks the gateway's settlement status for an order and, if
// paid, applies the purchased credits to the owning user. The settled flag on
// the ledger row is the sole idempotency gate: replays and concurrent
// verifications beyond the first fail with store.ErrAlreadySettled and leave
// the balance untouched.
func (s *Service) VerifyPayment(ctx context.Context, orderID string) error {
	if s.verifyLimiter != nil && s.verifyLimitPerMinute > 0 {
		count, retryAfter, err := s.verifyLimiter.ConsumeRateLimit(ctx, "verify_payment", orderID, s.verifyLimitPerMinute, time.Minute)
		if err != nil {
			// Limiter outage must not block verification.
			log.Printf("level=warn component=credits_service op=verify_payment msg=\"rate limiter unavailable\" err=%v", err)
		} else if count > s.verifyLimitPerMinute {
			log.Printf("level=warn component=credits_service op=verify_payment order_id=%s msg=\"rate limited\" retry_after_s=%d", orderID, retryAfter)
			return ErrTooManyVerifyAttempts
		}
	}

	order, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		log.Printf("level=warn component=credits_service op=verify_payment order_id=%s msg=\"gateway fetch failed\" err=%v", orderID, err)
		return ErrPaymentNotConfirmed
	}
	if order.Status != razorpay.OrderStatusPaid {
		return ErrPaymentNotConfirmed
	}

	transactionID, err := uuid.Parse(order.Receipt)
	if err != nil {
		// A receipt that is not one of our ids indicates a forged or stale
		// reference.
		return store.ErrTransactionNotFound
	}

	settled, err := s.repo.SettleTransactionAndCredit(ctx, transactionID)
	if err != nil {
		return err
	}

	s.publishSettled(ctx, settled)
	return nil
}

// publishSettled emits the settlement event. Failures are logged, never
// propagated: the credits are already applied.
func (s *Service) publishSettled(ctx context.Context, tx *domain.CreditTransaction) {
	if s.producer == nil {
		return
	}
	event := domain.CreditsSettledEvent{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Plan:          tx.Plan,
		Credits:       tx.Credits,
	}
	if err := s.producer.Publish(ctx, s.eventsExchange, "credits.settled", event); err != nil {
		log.Printf("level=warn component=credits_service op=verify_payment transaction_id=%s msg=\"settled event publish failed\" err=%v", tx.ID, err)
	}
}
