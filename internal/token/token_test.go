package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("super-secret"), time.Hour)

	tok, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	subject, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if subject != "user-123" {
		t.Fatalf("subject mismatch: got %q want %q", subject, "user-123")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("secret"), -1*time.Second)

	tok, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = svc.Verify(tok)
	if !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewService([]byte("right-secret"), time.Hour)
	verifier := NewService([]byte("wrong-secret"), time.Hour)

	tok, err := issuer.Issue("u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = verifier.Verify(tok)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_TamperedToken(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("secret"), time.Hour)

	tok, err := svc.Issue("u3")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Flip one byte inside the signature segment.
	raw := []byte(tok)
	lastDot := strings.LastIndexByte(tok, '.')
	pos := lastDot + (len(raw)-lastDot)/2
	if raw[pos] == 'a' {
		raw[pos] = 'b'
	} else {
		raw[pos] = 'a'
	}

	_, err = svc.Verify(string(raw))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerify_MalformedAndEmpty(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("secret"), time.Hour)

	for _, input := range []string{"", "   ", "not.a.jwt", "a.b"} {
		if _, err := svc.Verify(input); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", input, err)
		}
	}
}

func TestVerify_MissingSubject(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("secret"), time.Hour)

	tok, err := svc.Issue("")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty subject, got %v", err)
	}
}
