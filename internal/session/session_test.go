package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"recipebox/internal/auth"
	"recipebox/internal/storage"
	"recipebox/internal/storage/storagetest"
)

func newTestManager(t *testing.T) (*Manager, *Store, *storage.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	db := storagetest.NewStore(t)
	store := NewStore(db.Sessions, 24*time.Hour, false, logger, []byte("0123456789abcdef0123456789abcdef"))
	return NewManager(store), store, db
}

// login begins a session for p and returns the cookie the client would keep.
func login(t *testing.T, m *Manager, p auth.Principal) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	if err := m.Begin(rec, req, p); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func requestWith(cookie *http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return req
}

func TestBeginSetsCookieAttributes(t *testing.T) {
	m, _, _ := newTestManager(t)
	cookie := login(t, m, auth.Principal{ID: 1, Username: "alice"})

	if cookie.Name != CookieName {
		t.Errorf("cookie name = %q", cookie.Name)
	}
	if !cookie.HttpOnly {
		t.Errorf("cookie is not HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
	if cookie.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Errorf("MaxAge = %d, want 24h", cookie.MaxAge)
	}
}

func TestCurrentReturnsPrincipalUntilEnd(t *testing.T) {
	m, _, _ := newTestManager(t)
	want := auth.Principal{ID: 42, Username: "alice"}
	cookie := login(t, m, want)

	for i := 0; i < 2; i++ {
		got, ok, err := m.Current(requestWith(cookie))
		if err != nil || !ok {
			t.Fatalf("Current = %+v, %v, %v", got, ok, err)
		}
		if got != want {
			t.Fatalf("Current = %+v, want %+v", got, want)
		}
	}

	rec := httptest.NewRecorder()
	if err := m.End(rec, requestWith(cookie)); err != nil {
		t.Fatalf("End: %v", err)
	}
	expired := rec.Result().Cookies()
	if len(expired) != 1 || expired[0].MaxAge >= 0 {
		t.Fatalf("End did not expire the cookie: %+v", expired)
	}

	// A client replaying the old cookie gets nothing back.
	if _, ok, err := m.Current(requestWith(cookie)); err != nil || ok {
		t.Fatalf("Current after End = %v, %v; want false, nil", ok, err)
	}
}

func TestCurrentWithoutCookie(t *testing.T) {
	m, _, _ := newTestManager(t)
	if _, ok, err := m.Current(requestWith(nil)); err != nil || ok {
		t.Fatalf("Current = %v, %v; want false, nil", ok, err)
	}
}

func TestTamperedCookieIsIgnored(t *testing.T) {
	m, _, _ := newTestManager(t)
	cookie := login(t, m, auth.Principal{ID: 1, Username: "alice"})

	forged := &http.Cookie{Name: cookie.Name, Value: cookie.Value[:len(cookie.Value)-4] + "AAAA"}
	if _, ok, err := m.Current(requestWith(forged)); err != nil || ok {
		t.Fatalf("Current with forged cookie = %v, %v; want false, nil", ok, err)
	}
}

func TestCookieFromOtherKeyIsIgnored(t *testing.T) {
	m, _, db := newTestManager(t)
	cookie := login(t, m, auth.Principal{ID: 1, Username: "alice"})

	other := NewStore(db.Sessions, time.Hour, false, logrus.New(), []byte("fedcba9876543210fedcba9876543210"))
	if _, ok, err := NewManager(other).Current(requestWith(cookie)); err != nil || ok {
		t.Fatalf("Current with foreign key = %v, %v; want false, nil", ok, err)
	}
}

func TestBeginRotatesSessionID(t *testing.T) {
	m, _, _ := newTestManager(t)
	first := login(t, m, auth.Principal{ID: 1, Username: "alice"})

	rec := httptest.NewRecorder()
	if err := m.Begin(rec, requestWith(first), auth.Principal{ID: 2, Username: "bob"}); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	second := rec.Result().Cookies()[0]

	if _, ok, _ := m.Current(requestWith(first)); ok {
		t.Errorf("previous session still valid after a new login")
	}
	got, ok, err := m.Current(requestWith(second))
	if err != nil || !ok || got.Username != "bob" {
		t.Errorf("Current = %+v, %v, %v; want bob", got, ok, err)
	}
}

func TestExpiredSessionIsRejectedAndCleanedUp(t *testing.T) {
	m, store, _ := newTestManager(t)
	cookie := login(t, m, auth.Principal{ID: 1, Username: "alice"})

	store.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	if _, ok, err := m.Current(requestWith(cookie)); err != nil || ok {
		t.Fatalf("Current after expiry = %v, %v; want false, nil", ok, err)
	}

	n, err := store.Cleanup(context.Background())
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if n != 1 {
		t.Errorf("Cleanup removed %d sessions, want 1", n)
	}
}

func TestSweepStopsWithContext(t *testing.T) {
	_, store, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- store.Sweep(ctx, time.Millisecond) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Sweep returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Sweep did not stop after cancel")
	}
}
