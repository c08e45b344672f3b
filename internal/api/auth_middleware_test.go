package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/imagify/credits-service/internal/token"
)

func newGateTestServer(t *testing.T, tokens *token.Service) (http.Handler, *string) {
	t.Helper()
	var seenSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, ok := SubjectFromContext(r.Context())
		if !ok {
			t.Error("subject missing from context behind the gate")
		}
		seenSubject = subject
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(tokens)(next), &seenSubject
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return body
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	tokens := token.NewService([]byte("gate-secret"), time.Hour)
	gate, _ := newGateTestServer(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/credits", nil)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusUnauthorized)
	}
	body := decodeEnvelope(t, rec)
	if body["success"] != false {
		t.Errorf("expected success=false, got %v", body["success"])
	}
	if body["message"] != "Not authorized: token missing" {
		t.Errorf("unexpected message: %v", body["message"])
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	tokens := token.NewService([]byte("gate-secret"), time.Hour)
	gate, _ := newGateTestServer(t, tokens)

	expired := token.NewService([]byte("gate-secret"), -time.Hour)
	expiredToken, err := expired.Issue("subject-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	foreign := token.NewService([]byte("some-other-secret"), time.Hour)
	foreignToken, err := foreign.Issue("subject-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	for name, tok := range map[string]string{
		"garbage":      "not.a.token",
		"expired":      expiredToken,
		"wrong secret": foreignToken,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/credits", nil)
			req.Header.Set(TokenHeader, tok)
			rec := httptest.NewRecorder()
			gate.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d want %d", rec.Code, http.StatusUnauthorized)
			}
			if body := decodeEnvelope(t, rec); body["message"] != "Token expired or invalid" {
				t.Errorf("unexpected message: %v", body["message"])
			}
		})
	}
}

func TestAuthMiddlewarePassesValidToken(t *testing.T) {
	tokens := token.NewService([]byte("gate-secret"), time.Hour)
	gate, seenSubject := newGateTestServer(t, tokens)

	tok, err := tokens.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/credits", nil)
	req.Header.Set(TokenHeader, tok)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d, body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if *seenSubject != "user-42" {
		t.Errorf("subject: got %q want %q", *seenSubject, "user-42")
	}
}

func TestAuthMiddlewareAcceptsBearerFallback(t *testing.T) {
	tokens := token.NewService([]byte("gate-secret"), time.Hour)
	gate, seenSubject := newGateTestServer(t, tokens)

	tok, err := tokens.Issue("user-42")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/credits", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusOK)
	}
	if *seenSubject != "user-42" {
		t.Errorf("subject: got %q want %q", *seenSubject, "user-42")
	}
}

func TestAuthMiddlewarePrefersDedicatedHeader(t *testing.T) {
	tokens := token.NewService([]byte("gate-secret"), time.Hour)
	gate, seenSubject := newGateTestServer(t, tokens)

	headerToken, err := tokens.Issue("header-subject")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	bearerToken, err := tokens.Issue("bearer-subject")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/credits", nil)
	req.Header.Set(TokenHeader, headerToken)
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusOK)
	}
	if *seenSubject != "header-subject" {
		t.Errorf("subject: got %q want header-subject", *seenSubject)
	}
}
