package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/leadhub/internal/app/features/logout"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"github.com/dalemusser/leadhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*logout.Handler, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	// nil audit logger and ledger: the handler skips both
	return logout.NewHandler(sessionMgr, nil, nil, listview.NewRegistry(time.Minute), logger), sessionMgr
}

func deletionCookie(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
			}
			return
		}
	}
	t.Error("expected session cookie to be set for deletion")
}

func TestServeLogout_RedirectsToLogin(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	rec := httptest.NewRecorder()

	handler.ServeLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/login" {
		t.Errorf("Location: got %q, want %q", location, "/login")
	}
	deletionCookie(t, rec)
}

func TestServeLogout_HTMX_ReturnsHXRedirect(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/logout", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.ServeLogout(rec, req)

	if hx := rec.Header().Get("HX-Redirect"); hx != "/login" {
		t.Errorf("HX-Redirect: got %q, want %q", hx, "/login")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for HTMX, got %d", http.StatusOK, rec.Code)
	}
}

func TestServeLogout_DropsListState(t *testing.T) {
	handler, _ := newTestHandler(t)

	listview.Get(handler.Lists, "test-session", "accounts", func() *listview.Orchestrator[models.Account] {
		return listview.New[models.Account](10)
	})
	listview.Get(handler.Lists, "other-session", "accounts", func() *listview.Orchestrator[models.Account] {
		return listview.New[models.Account](10)
	})

	req := testutil.WithUser(httptest.NewRequest("GET", "/logout", nil), testutil.HeadOffice())
	handler.ServeLogout(httptest.NewRecorder(), req)

	if n := handler.Lists.Len(); n != 1 {
		t.Errorf("registry entries after logout: got %d, want 1", n)
	}
}

func TestServeLogout_WithExistingSession(t *testing.T) {
	handler, sessionMgr := newTestHandler(t)

	req1 := httptest.NewRequest("GET", "/setup", nil)
	rec1 := httptest.NewRecorder()
	sess := auth.NewSession("cookie-session")
	sess.Login(testutil.ValidToken())
	sess.SetLevel(2)
	if err := sessionMgr.Save(rec1, req1, sess, "kim@example.com"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	listview.Get(handler.Lists, "cookie-session", "leads:company", func() *listview.Orchestrator[models.Lead] {
		return listview.New[models.Lead](30)
	})

	req2 := httptest.NewRequest("GET", "/logout", nil)
	for _, c := range rec1.Result().Cookies() {
		req2.AddCookie(c)
	}
	rec2 := httptest.NewRecorder()

	handler.ServeLogout(rec2, req2)

	if rec2.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec2.Code)
	}
	deletionCookie(t, rec2)
	if n := handler.Lists.Len(); n != 0 {
		t.Errorf("cookie session state should be dropped, %d entries left", n)
	}
}

func TestExpire_ClearsCookieWithoutResponse(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.WithUser(httptest.NewRequest("GET", "/dashboard/company", nil), testutil.TeamLead())
	rec := httptest.NewRecorder()

	handler.Expire(rec, req)

	deletionCookie(t, rec)
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("Expire should leave the redirect to its caller, got Location %q", loc)
	}
}
