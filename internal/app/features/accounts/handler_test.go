package accounts_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/leadhub/internal/app/features/accounts"
	uierrors "github.com/dalemusser/leadhub/internal/app/features/errors"
	accountstore "github.com/dalemusser/leadhub/internal/app/store/accounts"
	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"github.com/dalemusser/leadhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*accounts.Handler, *testutil.FakeBackend) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	logger := zap.NewNop()
	gw := gateway.New(fb.URL, nil, logger)
	h := accounts.NewHandler(
		accountstore.New(gw, logger),
		listview.NewRegistry(time.Minute),
		nil,
		uierrors.NewErrorLogger(logger),
		logger,
	)
	fb.HandleData("getUsersUnderMyNetwork", networkPage("u1", "u2"))
	return h, fb
}

func networkPage(ids ...string) map[string]any {
	data := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]any{
			"id":        id,
			"email":     id + "@example.com",
			"username":  id,
			"status":    "active",
			"userLevel": "5",
		})
	}
	return map[string]any{"data": data, "totalUsers": len(ids)}
}

// serve runs fn, ignoring a panic from template rendering: these tests
// look at redirects and backend traffic, not markup.
func serve(fn http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	defer func() { recover() }()
	fn(w, r)
}

func post(path string, form url.Values, u testutil.TestUser) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, u)
}

func orchestrator(h *accounts.Handler) *listview.Orchestrator[models.Account] {
	return listview.Get(h.Lists, "test-session", accounts.ScreenKey, func() *listview.Orchestrator[models.Account] {
		return listview.New[models.Account](accountstore.PageSize)
	})
}

func load(t *testing.T, h *accounts.Handler) {
	t.Helper()
	req := testutil.WithUser(httptest.NewRequest("GET", accounts.Base, nil), testutil.HeadOffice())
	serve(h.ServeList, httptest.NewRecorder(), req)
	if !orchestrator(h).Loaded() {
		t.Fatal("list did not load")
	}
}

func TestServeList_RequestsPage(t *testing.T) {
	h, fb := newTestHandler(t)

	req := testutil.WithUser(httptest.NewRequest("GET", accounts.Base+"?page=3", nil), testutil.HeadOffice())
	serve(h.ServeList, httptest.NewRecorder(), req)

	reqs := fb.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 backend request, got %d", len(reqs))
	}
	if got := reqs[0].Variables["page"]; got != float64(3) {
		t.Errorf("page variable: got %v, want 3", got)
	}
	if got := reqs[0].Variables["limit"]; got != float64(accountstore.PageSize) {
		t.Errorf("limit variable: got %v, want %d", got, accountstore.PageSize)
	}
	if got := orchestrator(h).Page(); got != 3 {
		t.Errorf("orchestrator page: got %d, want 3", got)
	}
}

func TestServeList_ExpiredSessionRedirectsToLogin(t *testing.T) {
	h, fb := newTestHandler(t)
	u := testutil.HeadOffice()
	u.Token = testutil.ExpiredToken()

	rec := httptest.NewRecorder()
	req := testutil.WithUser(httptest.NewRequest("GET", accounts.Base, nil), u)
	h.ServeList(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location: got %q, want /login", loc)
	}
	if n := len(fb.Requests()); n != 0 {
		t.Errorf("expired session must not reach the backend, got %d requests", n)
	}
}

func TestServeList_ExpiredSessionHTMX(t *testing.T) {
	h, _ := newTestHandler(t)
	u := testutil.HeadOffice()
	u.Token = testutil.ExpiredToken()

	rec := httptest.NewRecorder()
	req := testutil.WithUser(httptest.NewRequest("GET", accounts.Base, nil), u)
	req.Header.Set("HX-Request", "true")
	h.ServeList(rec, req)

	if got := rec.Header().Get("HX-Redirect"); got != "/login" {
		t.Errorf("HX-Redirect: got %q, want /login", got)
	}
}

func TestHandleSelect_NoRemoteCall(t *testing.T) {
	h, fb := newTestHandler(t)
	load(t, h)
	before := len(fb.Requests())

	serve(h.HandleSelect, httptest.NewRecorder(), post(accounts.Base+"/select", url.Values{"all": {"on"}}, testutil.HeadOffice()))

	if got := len(fb.Requests()); got != before {
		t.Errorf("select made %d backend requests", got-before)
	}
	if sel := orchestrator(h).Selection(); len(sel) != 2 {
		t.Errorf("selection: got %v, want both rows", sel)
	}

	serve(h.HandleSelect, httptest.NewRecorder(), post(accounts.Base+"/select", url.Values{"id": {"u1"}, "checked": {"off"}}, testutil.HeadOffice()))
	if sel := orchestrator(h).Selection(); len(sel) != 1 || sel[0] != "u2" {
		t.Errorf("selection after unchecking u1: got %v", sel)
	}
}

func TestHandleCreate_PasswordMismatchSendsNothing(t *testing.T) {
	h, fb := newTestHandler(t)

	form := url.Values{
		"email":           {"new@example.com"},
		"username":        {"New"},
		"password":        {"secret1"},
		"passwordConfirm": {"secret2"},
	}
	serve(h.HandleCreate, httptest.NewRecorder(), post(accounts.Base+"/new", form, testutil.HeadOffice()))

	if n := fb.Count("register"); n != 0 {
		t.Errorf("register calls: got %d, want 0", n)
	}
}

func TestHandleCreate_InvalidInputSendsNothing(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing email", url.Values{"username": {"n"}, "password": {"p"}, "passwordConfirm": {"p"}}},
		{"bad email", url.Values{"email": {"nope"}, "username": {"n"}, "password": {"p"}, "passwordConfirm": {"p"}}},
		{"missing password", url.Values{"email": {"a@b.co"}, "username": {"n"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, fb := newTestHandler(t)
			serve(h.HandleCreate, httptest.NewRecorder(), post(accounts.Base+"/new", tc.form, testutil.HeadOffice()))
			if n := len(fb.Requests()); n != 0 {
				t.Errorf("backend requests: got %d, want 0", n)
			}
		})
	}
}

func TestHandleCreate_Success(t *testing.T) {
	h, fb := newTestHandler(t)
	fb.HandleData("register", "token")
	load(t, h)

	form := url.Values{
		"email":           {" New@Example.com "},
		"username":        {"New"},
		"password":        {"pw"},
		"passwordConfirm": {"pw"},
	}
	serve(h.HandleCreate, httptest.NewRecorder(), post(accounts.Base+"/new", form, testutil.HeadOffice()))

	if n := fb.Count("register"); n != 1 {
		t.Fatalf("register calls: got %d, want 1", n)
	}
	if n := fb.Count("getUsersUnderMyNetwork"); n != 2 {
		t.Errorf("list should be re-fetched after create, list calls: %d", n)
	}
}

func TestHandleBulkDelete_EmptySelectionSendsNothing(t *testing.T) {
	h, fb := newTestHandler(t)
	load(t, h)

	serve(h.HandleBulkDelete, httptest.NewRecorder(), post(accounts.Base+"/bulk/delete", nil, testutil.HeadOffice()))

	if n := fb.Count("deleteUser"); n != 0 {
		t.Errorf("deleteUser calls: got %d, want 0", n)
	}
}

func TestHandleBulkDelete_DeletesSelection(t *testing.T) {
	h, fb := newTestHandler(t)
	fb.HandleData("deleteUser", "User deleted successfully")
	load(t, h)
	orchestrator(h).ToggleSelectAll(true)

	serve(h.HandleBulkDelete, httptest.NewRecorder(), post(accounts.Base+"/bulk/delete", nil, testutil.HeadOffice()))

	if n := fb.Count("deleteUser"); n != 2 {
		t.Errorf("deleteUser calls: got %d, want 2", n)
	}
	if sel := orchestrator(h).Selection(); len(sel) != 0 {
		t.Errorf("selection should be cleared, got %v", sel)
	}
}

func TestHandleEdit_LevelAboveEditorIsNotSaved(t *testing.T) {
	h, fb := newTestHandler(t)
	fb.HandleData("updateUser", "User updated successfully")
	load(t, h)

	req := post(accounts.Base+"/u1/edit", url.Values{"userLevel": {"1"}}, testutil.TeamLead())
	req = testutil.WithChiURLParam(req, "id", "u1")
	serve(h.HandleEdit, httptest.NewRecorder(), req)

	if n := fb.Count("updateUser"); n != 0 {
		t.Errorf("updateUser calls: got %d, want 0", n)
	}
}

func TestHandleEdit_Saves(t *testing.T) {
	h, fb := newTestHandler(t)
	fb.HandleData("updateUser", "User updated successfully")
	load(t, h)

	req := post(accounts.Base+"/u1/edit", url.Values{"username": {"Renamed"}, "userLevel": {"4"}}, testutil.TeamLead())
	req = testutil.WithChiURLParam(req, "id", "u1")
	serve(h.HandleEdit, httptest.NewRecorder(), req)

	var update *testutil.BackendRequest
	for _, r := range fb.Requests() {
		if strings.Contains(r.Query, "updateUser(") {
			update = &r
		}
	}
	if update == nil {
		t.Fatal("no updateUser request")
	}
	if got := update.Variables["username"]; got != "Renamed" {
		t.Errorf("username: got %v", got)
	}
	if got := update.Variables["userLevel"]; got != float64(4) {
		t.Errorf("userLevel: got %v, want 4", got)
	}
}

func TestServeEdit_ForbiddenAboveEditLevel(t *testing.T) {
	h, _ := newTestHandler(t)
	u := testutil.TestUser{Email: "l4@test.com", Level: 4, Token: testutil.ValidToken()}

	rec := httptest.NewRecorder()
	req := testutil.WithChiURLParam(testutil.WithUser(httptest.NewRequest("GET", accounts.Base+"/u1/edit", nil), u), "id", "u1")
	serve(h.ServeEdit, rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}
