package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"weeklyspend/internal/auth"
	"weeklyspend/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fakeStore implements Store in memory and records what the handlers did
// with it.
type fakeStore struct {
	users      map[string]core.User
	nextUserID int64
	expenses   []core.Expense
	totals     []core.CategoryTotal
	closed     bool
	writes     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]core.User{}, nextUserID: 1}
}

func (f *fakeStore) CreateUser(ctx context.Context, email, passwordHash string) (int64, error) {
	f.writes++
	if _, exists := f.users[email]; exists {
		return 0, core.ErrDuplicateEmail
	}
	id := f.nextUserID
	f.nextUserID++
	f.users[email] = core.User{ID: id, Email: email, PasswordHash: passwordHash}
	return id, nil
}

func (f *fakeStore) UserByEmail(ctx context.Context, email string) (core.User, error) {
	u, ok := f.users[email]
	if !ok {
		return core.User{}, core.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	f.writes++
	f.expenses = append(f.expenses, e)
	return int64(len(f.expenses)), nil
}

func (f *fakeStore) CategoryTotals(ctx context.Context, userID int64, start, end core.Date) ([]core.CategoryTotal, error) {
	return f.totals, nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func newTestServer(t *testing.T, store *fakeStore) (*Server, *auth.Sessions) {
	t.Helper()
	sessions := auth.NewSessions(testSecret, time.Hour, false)
	srv, err := NewServer(":0", sessions, func(ctx context.Context) (Store, error) {
		return store, nil
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, sessions
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func withSession(t *testing.T, req *http.Request, sessions *auth.Sessions, userID int64) *http.Request {
	t.Helper()
	token, err := sessions.Issue(userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	return req
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, newFakeStore())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != 200 {
		t.Fatalf("index status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "weeklyspend") {
		t.Fatal("index body missing heading")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != 200 {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}

	// Unknown paths fall through to a 404, not the landing page.
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d, want 404", rr.Code)
	}
}

func TestSignup(t *testing.T) {
	store := newFakeStore()
	srv, _ := newTestServer(t, store)

	// GET renders the form.
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/signup", nil))
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "Sign up") {
		t.Fatalf("signup GET status = %d", rr.Code)
	}

	// Successful signup redirects to login.
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, postForm("/signup", url.Values{"email": {"a@example.com"}, "password": {"pw"}}))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("signup POST status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("signup redirect = %q, want /login", loc)
	}
	if u := store.users["a@example.com"]; u.PasswordHash == "pw" || u.PasswordHash == "" {
		t.Fatal("password stored unhashed or not at all")
	}

	// Duplicate email re-renders the form with an inline error, HTTP 200.
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, postForm("/signup", url.Values{"email": {"a@example.com"}, "password": {"other"}}))
	if rr.Code != 200 {
		t.Fatalf("duplicate signup status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Email already exists.") {
		t.Fatal("duplicate signup missing inline error")
	}

	// Invalid email is rejected before touching storage.
	writes := store.writes
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, postForm("/signup", url.Values{"email": {"nonsense"}, "password": {"pw"}}))
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "valid email") {
		t.Fatalf("invalid email status = %d", rr.Code)
	}
	if store.writes != writes {
		t.Fatal("invalid email reached storage")
	}
}

func TestLogin(t *testing.T) {
	store := newFakeStore()
	srv, _ := newTestServer(t, store)

	hash, err := auth.HashPassword("correct")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	store.users["a@example.com"] = core.User{ID: 1, Email: "a@example.com", PasswordHash: hash}

	// Wrong password and unknown email produce the same response.
	var bodies []string
	for _, form := range []url.Values{
		{"email": {"a@example.com"}, "password": {"wrong"}},
		{"email": {"nobody@example.com"}, "password": {"correct"}},
	} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, postForm("/login", form))
		if rr.Code != 200 {
			t.Fatalf("failed login status = %d, want 200", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Invalid credentials.") {
			t.Fatal("failed login missing inline error")
		}
		bodies = append(bodies, rr.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatal("wrong-password and unknown-email responses differ")
	}

	// Correct credentials set a session cookie and redirect to the dashboard.
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, postForm("/login", url.Values{"email": {"a@example.com"}, "password": {"correct"}}))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("login redirect = %q, want /dashboard", loc)
	}
	var sessionCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("login did not set a session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Fatal("session cookie is not HttpOnly")
	}
}

func TestLogout(t *testing.T) {
	srv, sessions := newTestServer(t, newFakeStore())

	req := withSession(t, httptest.NewRequest(http.MethodGet, "/logout", nil), sessions, 1)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusFound {
		t.Fatalf("logout status = %d, want %d", rr.Code, http.StatusFound)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("logout redirect = %q, want /login", loc)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName && c.MaxAge >= 0 {
			t.Fatal("logout did not clear the session cookie")
		}
	}

	// Logging out without a session is not an error.
	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logout", nil))
	if rr.Code != http.StatusFound {
		t.Fatalf("anonymous logout status = %d, want %d", rr.Code, http.StatusFound)
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	store := newFakeStore()
	srv, _ := newTestServer(t, store)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rr.Code != http.StatusFound {
		t.Fatalf("dashboard status = %d, want %d", rr.Code, http.StatusFound)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Fatalf("dashboard redirect = %q, want /login", loc)
	}
	if store.writes != 0 {
		t.Fatal("unauthenticated dashboard request touched storage")
	}
}

func TestDashboardRendersWeekSummary(t *testing.T) {
	store := newFakeStore()
	store.totals = []core.CategoryTotal{
		{Category: "Food", Total: 42.50},
		{Category: "Transport", Total: 10},
	}
	srv, sessions := newTestServer(t, store)

	req := withSession(t, httptest.NewRequest(http.MethodGet, "/dashboard?week=2024-W03", nil), sessions, 1)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("dashboard status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"2024-W03", "52.50", "Food", "Transport", "10.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard body missing %q", want)
		}
	}
	if !store.closed {
		t.Fatal("request-scoped store not closed")
	}
}

func TestDashboardEmptyWeek(t *testing.T) {
	srv, sessions := newTestServer(t, newFakeStore())

	req := withSession(t, httptest.NewRequest(http.MethodGet, "/dashboard?week=2024-W03", nil), sessions, 1)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("dashboard status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "0.00") {
		t.Fatal("empty week missing 0.00 total")
	}
	if !strings.Contains(rr.Body.String(), "No expenses recorded") {
		t.Fatal("empty week missing placeholder")
	}
}

func TestDashboardMalformedWeek(t *testing.T) {
	srv, sessions := newTestServer(t, newFakeStore())

	for _, token := range []string{"2024-W99", "notaweek"} {
		req := withSession(t, httptest.NewRequest(http.MethodGet, "/dashboard?week="+url.QueryEscape(token), nil), sessions, 1)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("week=%q status = %d, want 200", token, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "Invalid week selection.") {
			t.Fatalf("week=%q missing inline error", token)
		}
	}
}

func TestDashboardDefaultsToCurrentWeek(t *testing.T) {
	srv, sessions := newTestServer(t, newFakeStore())

	req := withSession(t, httptest.NewRequest(http.MethodGet, "/dashboard", nil), sessions, 1)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("dashboard status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), core.WeekOf(time.Now()).String()) {
		t.Fatal("dashboard does not echo the current ISO week")
	}
}

func TestDashboardAddExpense(t *testing.T) {
	store := newFakeStore()
	srv, sessions := newTestServer(t, store)

	form := url.Values{"amount": {"42.50"}, "category": {"Food"}, "date": {"2024-01-17"}}
	req := withSession(t, postForm("/dashboard", form), sessions, 7)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("dashboard POST status = %d, want 200", rr.Code)
	}
	if len(store.expenses) != 1 {
		t.Fatalf("stored %d expenses, want 1", len(store.expenses))
	}
	e := store.expenses[0]
	if e.UserID != 7 || e.Amount != 42.50 || e.Category != "Food" || e.Date.String() != "2024-01-17" {
		t.Fatalf("stored expense = %+v", e)
	}
}

func TestDashboardRejectsInvalidExpense(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		wantMsg string
	}{
		{
			name:    "non-numeric amount",
			form:    url.Values{"amount": {"abc"}, "category": {"Food"}, "date": {"2024-01-17"}},
			wantMsg: "Amount must be a number.",
		},
		{
			name:    "malformed date",
			form:    url.Values{"amount": {"1.50"}, "category": {"Food"}, "date": {"17/01/2024"}},
			wantMsg: "Date must be a valid",
		},
		{
			name:    "missing category",
			form:    url.Values{"amount": {"1.50"}, "category": {"  "}, "date": {"2024-01-17"}},
			wantMsg: "Category is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			srv, sessions := newTestServer(t, store)

			req := withSession(t, postForm("/dashboard", tt.form), sessions, 1)
			rr := httptest.NewRecorder()
			srv.Handler.ServeHTTP(rr, req)
			if rr.Code != 200 {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.wantMsg) {
				t.Fatalf("body missing %q", tt.wantMsg)
			}
			if len(store.expenses) != 0 {
				t.Fatal("invalid expense reached storage")
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, newFakeStore())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}
