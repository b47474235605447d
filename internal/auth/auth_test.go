package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"batchdesk/internal/core"
)

func testCreds(t *testing.T) *StaticCredentials {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewStaticCredentials("admin", string(hash))
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	return c
}

func TestStaticCredentials(t *testing.T) {
	c := testCreds(t)
	ctx := context.Background()
	tests := []struct {
		user, pass string
		ok         bool
	}{
		{"admin", "s3cret", true},
		{" admin ", "s3cret", true},
		{"admin", "wrong", false},
		{"root", "s3cret", false},
		{"", "", false},
	}
	for _, tt := range tests {
		err := c.Verify(ctx, tt.user, tt.pass)
		if tt.ok && err != nil {
			t.Errorf("Verify(%q,%q) = %v", tt.user, tt.pass, err)
		}
		if !tt.ok && !errors.Is(err, core.ErrInvalidCredentials) {
			t.Errorf("Verify(%q,%q) = %v, want ErrInvalidCredentials", tt.user, tt.pass, err)
		}
	}
}

func TestNewStaticCredentialsValidation(t *testing.T) {
	if _, err := NewStaticCredentials("", "x"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
	if _, err := NewStaticCredentials("admin", "not-a-hash"); err == nil {
		t.Error("expected error for malformed hash")
	}
	if _, err := NewStaticCredentialsFromPassword("admin", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestGateLifecycle(t *testing.T) {
	ctx := context.Background()
	g := NewGate(testCreds(t))

	if _, err := g.Login(ctx, "admin", "nope"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	s, err := g.Login(ctx, "admin", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got, ok := g.Lookup(s.ID); !ok || got.Username != "admin" {
		t.Fatalf("lookup after login = %+v, %v", got, ok)
	}
	g.Logout(ctx, s.ID)
	if _, ok := g.Lookup(s.ID); ok {
		t.Fatal("session survived logout")
	}
	if _, ok := g.Lookup(""); ok {
		t.Fatal("empty id resolved")
	}
}

func TestGateTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewGate(testCreds(t), WithTTL(time.Hour), WithGateClock(func() time.Time { return now }))
	s, err := g.Login(context.Background(), "admin", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Hour)
	if _, ok := g.Lookup(s.ID); ok {
		t.Fatal("session should have expired")
	}
}

func TestRequireSession(t *testing.T) {
	g := NewGate(testCreds(t))
	s, _ := g.Login(context.Background(), "admin", "s3cret")

	var seen Session
	h := RequireSession(g)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: s.ID})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen.ID != s.ID {
		t.Fatalf("authenticated request: code=%d session=%+v", rec.Code, seen)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != LoginPath {
		t.Fatalf("browser request: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodPost, "/batches", nil)
	req.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized || rec.Header().Get("HX-Redirect") != LoginPath {
		t.Fatalf("htmx request: code=%d", rec.Code)
	}
}

func TestCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	SetCookie(rec, httptest.NewRequest(http.MethodPost, "/login", nil), Session{ID: "abc"}, 0)
	c := rec.Result().Cookies()[0]
	if c.Name != CookieName || c.Value != "abc" || !c.HttpOnly || c.MaxAge != 0 {
		t.Fatalf("unexpected cookie %+v", c)
	}
	rec = httptest.NewRecorder()
	ClearCookie(rec)
	if c := rec.Result().Cookies()[0]; c.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", c)
	}
}
