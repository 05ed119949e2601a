package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewTokenManager("test-secret")

	signed, err := m.Issue("user-1", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	userID, err := m.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %s", userID)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret")

	signed, err := m.Issue("user-1", time.Now().Add(-TokenTTL-time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := m.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := NewTokenManager("secret-a").Issue("user-1", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := NewTokenManager("secret-b").Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthenticateMissingCookie(t *testing.T) {
	m := NewTokenManager("test-secret")
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, err := m.Authenticate(req); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestRequireAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := NewTokenManager("test-secret")
	r := gin.New()
	r.Use(RequireAuth(m))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	// No cookie: rejected before the handler.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// Garbage cookie: same.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	// Valid cookie: handler sees the user id.
	signed, err := m.Issue("user-1", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: signed})
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "user-1" {
		t.Fatalf("expected user-1, got %q", rec.Body.String())
	}
}
