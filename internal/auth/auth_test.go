package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTokenRoundtrip(t *testing.T) {
	token, err := NewToken("household-secret")
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}
	if err := Verify("household-secret", token); err != nil {
		t.Errorf("Expected token to verify, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewToken("household-secret")
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}
	if err := Verify("other-secret", token); err == nil {
		t.Error("Expected verification with the wrong secret to fail")
	}
}

func TestMiddleware(t *testing.T) {
	handler := Middleware("secret", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("MissingToken", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/state", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 without token, got %d", rec.Code)
		}
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/state", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for garbage token, got %d", rec.Code)
		}
	})

	t.Run("ValidToken", func(t *testing.T) {
		token, err := NewToken("secret")
		if err != nil {
			t.Fatalf("NewToken failed: %v", err)
		}
		req := httptest.NewRequest("GET", "/api/state", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200 with valid token, got %d", rec.Code)
		}
	})
}
