package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xela07ax/librarium/internal/domain"
	"github.com/xela07ax/librarium/internal/infra"
	"go.uber.org/zap"
)

type fakeResolver struct {
	users map[string]*domain.User
	err   error
}

func (f *fakeResolver) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[username], nil
}

func newTestGuard(t *testing.T, resolver *fakeResolver) (*Guard, *TokenService) {
	t.Helper()
	tokens := NewTokenService(infra.AuthConfig{Secret: "test-secret", TokenTTL: time.Hour})
	return NewGuard(tokens, resolver, zap.NewNop()), tokens
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestGuard_NoToken(t *testing.T) {
	t.Parallel()

	guard, _ := newTestGuard(t, &fakeResolver{})
	var called bool

	rec := httptest.NewRecorder()
	guard.Authenticate(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/books", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler must not run without a token")
	}
}

func TestGuard_InvalidToken(t *testing.T) {
	t.Parallel()

	guard, _ := newTestGuard(t, &fakeResolver{})
	var called bool

	req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.here")
	rec := httptest.NewRecorder()
	guard.Authenticate(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("want 401 and no handler call, got %d called=%v", rec.Code, called)
	}
}

func TestGuard_DeletedAfterIssue(t *testing.T) {
	t.Parallel()

	// Токен валиден, но аккаунт уже удален — все равно 401
	guard, tokens := newTestGuard(t, &fakeResolver{users: map[string]*domain.User{}})
	tok, err := tokens.Issue("alice", false, time.Hour)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	guard.Authenticate(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("want 401 for deleted account, got %d called=%v", rec.Code, called)
	}
}

func TestGuard_InactiveUser(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{users: map[string]*domain.User{
		"alice": {ID: 1, Username: "alice", IsActive: false},
	}}
	guard, tokens := newTestGuard(t, resolver)
	tok, _ := tokens.Issue("alice", false, time.Hour)

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	guard.Authenticate(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || called {
		t.Fatalf("want 401 for inactive account, got %d called=%v", rec.Code, called)
	}
}

func TestGuard_Authenticated(t *testing.T) {
	t.Parallel()

	alice := &domain.User{ID: 1, Username: "alice", IsActive: true}
	guard, tokens := newTestGuard(t, &fakeResolver{users: map[string]*domain.User{"alice": alice}})
	tok, _ := tokens.Issue("alice", false, time.Hour)

	var gotUser *domain.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/books", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	guard.Authenticate(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	if gotUser == nil || gotUser.ID != 1 {
		t.Fatalf("authenticated user missing from context: %+v", gotUser)
	}
}

func TestRequireAdmin_NonAdmin(t *testing.T) {
	t.Parallel()

	guard, _ := newTestGuard(t, &fakeResolver{})
	var called bool

	req := httptest.NewRequest(http.MethodDelete, "/v1/books/1", nil)
	req = req.WithContext(ContextWithUser(req.Context(), &domain.User{ID: 1, Username: "alice", IsActive: true}))
	rec := httptest.NewRecorder()
	guard.RequireAdmin(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden || called {
		t.Fatalf("want 403 and no handler call, got %d called=%v", rec.Code, called)
	}
}

func TestRequireAdmin_Admin(t *testing.T) {
	t.Parallel()

	guard, _ := newTestGuard(t, &fakeResolver{})
	var called bool

	req := httptest.NewRequest(http.MethodDelete, "/v1/books/1", nil)
	req = req.WithContext(ContextWithUser(req.Context(), &domain.User{ID: 2, Username: "root", IsAdmin: true, IsActive: true}))
	rec := httptest.NewRecorder()
	guard.RequireAdmin(okHandler(&called)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || !called {
		t.Fatalf("admin must pass, got %d called=%v", rec.Code, called)
	}
}

// Снимок admin в токене не должен давать права: источник правды — БД.
func TestRequireAdmin_StaleTokenClaimIgnored(t *testing.T) {
	t.Parallel()

	demoted := &domain.User{ID: 3, Username: "mallory", IsAdmin: false, IsActive: true}
	guard, tokens := newTestGuard(t, &fakeResolver{users: map[string]*domain.User{"mallory": demoted}})

	// Токен выпущен, когда mallory еще была админом
	tok, _ := tokens.Issue("mallory", true, time.Hour)

	var called bool
	req := httptest.NewRequest(http.MethodDelete, "/v1/books/1", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	guard.Authenticate(guard.RequireAdmin(okHandler(&called))).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden || called {
		t.Fatalf("demoted admin must get 403 despite token claim, got %d called=%v", rec.Code, called)
	}
}
