package leads_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	uierrors "github.com/dalemusser/leadhub/internal/app/features/errors"
	"github.com/dalemusser/leadhub/internal/app/features/leads"
	leadstore "github.com/dalemusser/leadhub/internal/app/store/leads"
	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/app/system/leadimport"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"github.com/dalemusser/leadhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fixture struct {
	h      *leads.Handler
	fb     *testutil.FakeBackend
	router chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	logger := zap.NewNop()
	gw := gateway.New(fb.URL, nil, logger)
	h := leads.NewHandler(
		leadstore.New(gw, logger),
		listview.NewRegistry(time.Minute),
		leadimport.NewJobs(time.Minute),
		nil,
		uierrors.NewErrorLogger(logger),
		logger,
	)
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "test-session", "", time.Hour, false, logger)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/company", leads.Routes(h, sm, leadstore.Company, 2))
	r.Mount("/unallocated", leads.Routes(h, sm, leadstore.Unallocated, 3))
	r.Mount("/db/{type}", leads.TypeRoutes(h, sm))

	page := leadPage("l1", "l2")
	fb.HandleData("getUserDBsForMainUser", page)
	fb.HandleData("getUserDBsByMyUsername", page)
	fb.HandleData("getUserDBsUnderMyNetwork", page)
	fb.HandleData("searchUserDBsUnderMyNetworkWithOr", page)
	fb.HandleData("getUsernamesUnderMyNetwork", []string{"kim", "lee"})
	fb.Handle("updateUserDB", func(req testutil.BackendRequest) any {
		return map[string]any{"data": map[string]any{"updateUserDB": map[string]any{"id": req.Variables["id"]}}}
	})
	fb.Handle("createUserDB", func(req testutil.BackendRequest) any {
		return map[string]any{"data": map[string]any{"createUserDB": map[string]any{"id": "new"}}}
	})
	return &fixture{h: h, fb: fb, router: r}
}

func leadPage(ids ...string) map[string]any {
	users := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		users = append(users, map[string]any{"id": id, "username": id, "phonenumber": "010-" + id, "type": "els"})
	}
	return map[string]any{"users": users, "totalUsers": len(ids)}
}

// do routes req, ignoring a panic from template rendering.
func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		f.router.ServeHTTP(rec, req)
	}()
	return rec
}

func (f *fixture) get(path string, u testutil.TestUser) *httptest.ResponseRecorder {
	return f.do(testutil.WithUser(httptest.NewRequest("GET", path, nil), u))
}

func (f *fixture) post(path string, form url.Values, u testutil.TestUser) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(testutil.WithUser(req, u))
}

func (f *fixture) list(scope leadstore.Scope) *listview.Orchestrator[models.Lead] {
	return listview.Get(f.h.Lists, "test-session", scope.Key(), func() *listview.Orchestrator[models.Lead] {
		return listview.New[models.Lead](f.h.PageSize)
	})
}

func (f *fixture) requestsFor(field string) []testutil.BackendRequest {
	var out []testutil.BackendRequest
	for _, r := range f.fb.Requests() {
		if strings.Contains(r.Query, field+"(") {
			out = append(out, r)
		}
	}
	return out
}

func TestRoutes_LevelGate(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/company/", testutil.TeamLead())

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.fb.Requests())
}

func TestTypeRoutes_UnknownType(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/db/bogus/", testutil.HeadOffice())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, f.fb.Requests())
}

func TestTypeRoutes_ListsCategory(t *testing.T) {
	f := newFixture(t)

	f.get("/db/coin_old/", testutil.TeamLead())

	reqs := f.requestsFor("getUserDBsUnderMyNetwork")
	require.Len(t, reqs, 1)
	assert.Equal(t, "coin_old", reqs[0].Variables["type"])
	assert.Equal(t, true, reqs[0].Variables["includeSelf"])
}

func TestSearch_PagingKeepsFilter(t *testing.T) {
	f := newFixture(t)
	f.h.PageSize = 30

	f.post("/company/search", url.Values{"field": {"username"}, "keyword": {" kim "}}, testutil.HeadOffice())
	f.get("/company/?page=2", testutil.HeadOffice())

	reqs := f.requestsFor("searchUserDBsUnderMyNetworkWithOr")
	require.Len(t, reqs, 2)
	assert.Equal(t, float64(0), reqs[0].Variables["offset"])
	assert.Equal(t, "kim", reqs[0].Variables["username"])
	assert.Equal(t, float64(30), reqs[1].Variables["offset"])
	assert.Equal(t, "kim", reqs[1].Variables["username"])
}

func TestSelect_IsLocal(t *testing.T) {
	f := newFixture(t)
	f.get("/company/", testutil.HeadOffice())
	before := len(f.fb.Requests())

	f.post("/company/select", url.Values{"id": {"l2"}, "checked": {"on"}}, testutil.HeadOffice())

	assert.Len(t, f.fb.Requests(), before)
	assert.Equal(t, []string{"l2"}, f.list(leadstore.Company).Selection())
}

func TestBulkManager_NoTargetSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.get("/company/", testutil.HeadOffice())
	f.list(leadstore.Company).ToggleSelectAll(true)

	f.post("/company/bulk/manager", url.Values{"target": {""}}, testutil.HeadOffice())

	assert.Empty(t, f.requestsFor("updateUserDB"))
	assert.Len(t, f.list(leadstore.Company).Selection(), 2, "a refused action keeps the selection")
}

func TestBulkType_UnknownTypeSendsNothing(t *testing.T) {
	f := newFixture(t)
	f.get("/company/", testutil.HeadOffice())
	f.list(leadstore.Company).ToggleSelectAll(true)

	f.post("/company/bulk/type", url.Values{"target": {"gold"}}, testutil.HeadOffice())

	assert.Empty(t, f.requestsFor("updateUserDB"))
}

func TestBulkManager_UpdatesEverySelectedLead(t *testing.T) {
	f := newFixture(t)
	f.get("/company/", testutil.HeadOffice())
	f.list(leadstore.Company).ToggleSelectAll(true)

	f.post("/company/bulk/manager", url.Values{"target": {"kim"}}, testutil.HeadOffice())

	updates := f.requestsFor("updateUserDB")
	require.Len(t, updates, 2)
	ids := map[any]bool{}
	for _, u := range updates {
		assert.Equal(t, "kim", u.Variables["manager"])
		_, hasMemo := u.Variables["memo"]
		assert.False(t, hasMemo, "manager reassignment sends only the manager")
		ids[u.Variables["id"]] = true
	}
	assert.True(t, ids["l1"] && ids["l2"])
	assert.Empty(t, f.list(leadstore.Company).Selection())
}

func TestMemo_SendsOnlyMemo(t *testing.T) {
	f := newFixture(t)
	f.get("/unallocated/", testutil.TeamLead())

	f.post("/unallocated/l1/memo", url.Values{"memo": {"called, no answer"}}, testutil.TeamLead())

	updates := f.requestsFor("updateUserDB")
	require.Len(t, updates, 1)
	assert.Equal(t, "l1", updates[0].Variables["id"])
	assert.Equal(t, "called, no answer", updates[0].Variables["memo"])
	_, hasName := updates[0].Variables["username"]
	assert.False(t, hasName)
}

func TestEdit_HeadOfficeOnly(t *testing.T) {
	f := newFixture(t)
	f.get("/unallocated/", testutil.TeamLead())

	rec := f.post("/unallocated/l1/edit", url.Values{"username": {"x"}}, testutil.TeamLead())

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.requestsFor("updateUserDB"))
}

func TestEdit_KeepsManagerAndLegacyTypeWhenManagersFail(t *testing.T) {
	f := newFixture(t)
	f.fb.HandleData("getUserDBsForMainUser", map[string]any{
		"users": []map[string]any{{
			"id": "l1", "username": "Kim", "phonenumber": "010-1", "type": "legacy_vip", "manager": "outsider",
		}},
		"totalUsers": 1,
	})
	f.fb.HandleErrors("getUsernamesUnderMyNetwork", "boom")
	f.get("/company/", testutil.HeadOffice())

	f.post("/company/l1/edit", url.Values{
		"username": {"Park"},
		"type":     {"legacy_vip"},
		"manager":  {"outsider"},
	}, testutil.HeadOffice())

	updates := f.requestsFor("updateUserDB")
	require.Len(t, updates, 1)
	assert.Equal(t, "Park", updates[0].Variables["username"])
	assert.Equal(t, "outsider", updates[0].Variables["manager"])
	_, sentType := updates[0].Variables["type"]
	assert.False(t, sentType, "an unchanged legacy type is not sent")
}

func TestCreate_UsesScreenType(t *testing.T) {
	f := newFixture(t)

	f.post("/db/stock_new/new", url.Values{"username": {"Kim"}, "phonenumber": {"010-1234-5678"}}, testutil.HeadOffice())

	creates := f.requestsFor("createUserDB")
	require.Len(t, creates, 1)
	input, ok := creates[0].Variables["createUserInput"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "stock_new", input["type"])
	assert.Equal(t, "010-1234-5678", input["phonenumber"])
}

func TestCreate_MissingPhoneSendsNothing(t *testing.T) {
	f := newFixture(t)

	f.post("/company/new", url.Values{"username": {"Kim"}}, testutil.HeadOffice())

	assert.Empty(t, f.requestsFor("createUserDB"))
}

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	x := excelize.NewFile()
	defer x.Close()
	sheet := x.GetSheetName(0)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, x.SetSheetRow(sheet, cell, &row))
	}
	buf, err := x.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImport_UploadWaitsForConfirmation(t *testing.T) {
	f := newFixture(t)
	data := workbook(t,
		[]any{"username", "phonenumber"},
		[]any{"Kim", "010-1111-2222"},
		[]any{"Lee", "010-3333-4444"},
	)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "leads.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/company/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	f.do(testutil.WithUser(req, testutil.HeadOffice()))

	assert.Equal(t, 1, f.h.Jobs.Len())
	assert.Empty(t, f.requestsFor("createUserDB"))
}

func TestImportConfirm_CreatesRowsOnce(t *testing.T) {
	f := newFixture(t)
	rows := []leadimport.Row{
		{Line: 2, Lead: models.Lead{PhoneNumber: "010-1"}},
		{Line: 3, Lead: models.Lead{PhoneNumber: "010-2"}},
	}
	job := f.h.Jobs.Put("test-session", leadstore.Company.Key(), rows)

	f.post("/company/import/"+job.ID+"/confirm", nil, testutil.HeadOffice())
	f.post("/company/import/"+job.ID+"/confirm", nil, testutil.HeadOffice())

	assert.Len(t, f.requestsFor("createUserDB"), 2)
}

func TestImportConfirm_OtherScreenIsRejected(t *testing.T) {
	f := newFixture(t)
	job := f.h.Jobs.Put("test-session", leadstore.Company.Key(), []leadimport.Row{{Line: 2, Lead: models.Lead{PhoneNumber: "1"}}})

	f.post("/unallocated/import/"+job.ID+"/confirm", nil, testutil.HeadOffice())

	assert.Empty(t, f.requestsFor("createUserDB"))
}

func TestImportCancel_DropsJob(t *testing.T) {
	f := newFixture(t)
	job := f.h.Jobs.Put("test-session", leadstore.Company.Key(), []leadimport.Row{{Line: 2, Lead: models.Lead{PhoneNumber: "1"}}})

	f.post("/company/import/"+job.ID+"/cancel", nil, testutil.HeadOffice())
	f.post("/company/import/"+job.ID+"/confirm", nil, testutil.HeadOffice())

	assert.Zero(t, f.h.Jobs.Len())
	assert.Empty(t, f.requestsFor("createUserDB"))
}

func TestExpiredSession_RedirectsToLogin(t *testing.T) {
	f := newFixture(t)
	u := testutil.HeadOffice()
	u.Token = testutil.ExpiredToken()

	rec := f.get("/company/", u)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Empty(t, f.fb.Requests())
}
