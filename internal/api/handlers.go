/**
 * @description
 * This file contains the HTTP handler functions for the credits-service.
 * Handlers parse incoming requests, call the appropriate business logic in
 * the service layer, and translate typed errors into stable, user-safe
 * responses. Internal details (store errors, signing internals, gateway
 * bodies) are logged, never echoed to the caller.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/imagify/credits-service/internal/app"
	"github.com/imagify/credits-service/internal/domain"
	"github.com/imagify/credits-service/internal/store"
)

// Handler holds the application service that handlers will interact with.
type Handler struct {
	service *app.Service
}

// NewHandler creates a new Handler with the given service.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// handleRegister creates a new identity and returns its first token.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, "register", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

// handleLogin authenticates an identity and returns a fresh token.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, "login", err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// handleGetCredits returns the authenticated user's balance.
func (h *Handler) handleGetCredits(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := SubjectFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized: token missing")
		return
	}

	resp, err := h.service.GetCredits(r.Context(), subjectID)
	if err != nil {
		respondWithServiceError(w, "get_credits", err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// handleListPurchases returns the authenticated user's purchase history.
func (h *Handler) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := SubjectFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized: token missing")
		return
	}

	purchases, err := h.service.ListPurchases(r.Context(), subjectID)
	if err != nil {
		respondWithServiceError(w, "list_purchases", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"transactions": purchases,
	})
}

// handleCreateOrder starts a credit purchase: it records the pending
// transaction and returns the gateway order for the client to pay
// out-of-band.
func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	subjectID, ok := SubjectFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized: token missing")
		return
	}

	var req domain.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), subjectID, req.PlanID)
	if err != nil {
		respondWithServiceError(w, "create_order", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"order":   order,
	})
}

// handleVerifyPayment confirms a gateway order's settlement and credits the
// purchase once.
func (h *Handler) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OrderID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing order id")
		return
	}

	if err := h.service.VerifyPayment(r.Context(), req.OrderID); err != nil {
		respondWithServiceError(w, "verify_payment", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Credits added",
	})
}

// respondWithServiceError maps typed service errors to stable responses.
func respondWithServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, app.ErrMissingFields),
		errors.Is(err, app.ErrInvalidEmail),
		errors.Is(err, app.ErrPasswordTooShort):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrMissingPlan):
		respondWithError(w, http.StatusBadRequest, "Missing plan")
	case errors.Is(err, app.ErrUnknownPlan):
		respondWithError(w, http.StatusBadRequest, "Invalid plan")
	case errors.Is(err, app.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, store.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "Email already registered")
	case errors.Is(err, app.ErrOrderCreationFailed):
		respondWithError(w, http.StatusPaymentRequired, "Order creation failed")
	case errors.Is(err, app.ErrPaymentNotConfirmed):
		respondWithError(w, http.StatusPaymentRequired, "Payment not confirmed")
	case errors.Is(err, store.ErrTransactionNotFound):
		respondWithError(w, http.StatusNotFound, "Transaction not found")
	case errors.Is(err, store.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, store.ErrAlreadySettled):
		respondWithError(w, http.StatusConflict, "Payment already processed")
	case errors.Is(err, app.ErrTooManyVerifyAttempts):
		respondWithError(w, http.StatusTooManyRequests, "Too many attempts, retry later")
	default:
		log.Printf("level=error component=api op=%s msg=\"unhandled service error\" err=%v", op, err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// respondWithError writes a JSON error envelope.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
