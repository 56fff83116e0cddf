package accounts_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/leadhub/internal/app/store/accounts"
	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/app/system/listview"
	"github.com/dalemusser/leadhub/internal/domain/models"
	"github.com/dalemusser/leadhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newHook(t *testing.T) (*testutil.FakeBackend, *accounts.Store, *accounts.Hook) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	store := accounts.New(gateway.New(fb.URL, nil, zap.NewNop()), zap.NewNop())
	return fb, store, store.For(testutil.NewCredential())
}

func networkPage(total int, accts ...map[string]any) map[string]any {
	return map[string]any{"data": accts, "totalUsers": total}
}

func TestCreate_PasswordMismatch_NoRequest(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleData("register", "token")

	got, err := hook.Create(context.Background(), accounts.Draft{
		Email:           "new@example.com",
		Username:        "new",
		Password:        "secret-1",
		PasswordConfirm: "secret-2",
	})

	assert.Nil(t, got)
	var ve *listview.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, accounts.MsgPasswordMismatch, ve.Message)
	assert.Empty(t, fb.Requests(), "no request may be sent on mismatch")
	assert.Equal(t, accounts.MsgPasswordMismatch, hook.LastError())
}

func TestCreate_Success_SynthesizesRecord(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleData("register", "issued-token")

	got, err := hook.Create(context.Background(), accounts.Draft{
		Email:           "  New@Example.com ",
		Username:        "newbie",
		FirstName:       "Kim",
		LastName:        "Lee",
		Password:        "pw",
		PasswordConfirm: "pw",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, models.StatusInactive, got.Status)
	assert.Equal(t, 5, got.UserLevel.Int())

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "new@example.com", reqs[0].Variables["email"])
	_, hasReferrer := reqs[0].Variables["referrer"]
	assert.False(t, hasReferrer, "blank referrer is omitted")
}

func TestCreate_RemoteError(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleErrors("register", "Email already exists")

	got, err := hook.Create(context.Background(), accounts.Draft{Email: "a@example.com", Password: "x", PasswordConfirm: "x"})
	assert.Nil(t, got)
	var re *gateway.RemoteOperationError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "Email already exists", hook.LastError())
}

func TestList_UsesPageNumber(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleData("getUsersUnderMyNetwork", networkPage(25,
		map[string]any{"id": "u1", "email": "a@example.com", "userLevel": 3},
		map[string]any{"id": "u2", "email": "b@example.com", "userLevel": "4", "referrer": nil},
	))

	page, err := hook.List(context.Background(), models.PageArgs{Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Items[0].UserLevel.Int())
	assert.Equal(t, "", page.Items[1].Referrer)

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.EqualValues(t, 10, reqs[0].Variables["limit"])
	assert.EqualValues(t, 3, reqs[0].Variables["page"])
}

func TestSearch_ClientSideOr(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleData("getUsersUnderMyNetwork", networkPage(3,
		map[string]any{"id": "u1", "email": "kim@example.com", "username": "alpha"},
		map[string]any{"id": "u2", "email": "lee@example.com", "username": "kimchi"},
		map[string]any{"id": "u3", "email": "park@example.com", "username": "gamma"},
	))

	page, err := hook.Search(context.Background(), models.PageArgs{Limit: 10}, models.Filter{"email": "kim", "username": "kim"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	ids := []string{page.Items[0].ID, page.Items[1].ID}
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids)
}

// networkOf answers getUsersUnderMyNetwork with n accounts user1..userN,
// paged by the limit and page variables.
func networkOf(n int) testutil.Responder {
	return func(req testutil.BackendRequest) any {
		limit := int(req.Variables["limit"].(float64))
		page := int(req.Variables["page"].(float64))
		var accts []map[string]any
		for i := (page-1)*limit + 1; i <= page*limit && i <= n; i++ {
			accts = append(accts, map[string]any{
				"id":    fmt.Sprintf("u%d", i),
				"email": fmt.Sprintf("user%d@example.com", i),
			})
		}
		return map[string]any{"data": map[string]any{"getUsersUnderMyNetwork": networkPage(n, accts...)}}
	}
}

func TestSearch_FindsAccountOnLaterNetworkPage(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.Handle("getUsersUnderMyNetwork", networkOf(30))

	page, err := hook.Search(context.Background(), models.PageArgs{Limit: 10}, models.Filter{"email": "user25"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u25", page.Items[0].ID)
	assert.Equal(t, 3, fb.Count("getUsersUnderMyNetwork"), "every network page is read")
}

func TestSearch_ReturnsRequestedWindowOfMatches(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.Handle("getUsersUnderMyNetwork", networkOf(30))

	// user1 and user10..user19 match "user1": 11 accounts.
	page, err := hook.Search(context.Background(), models.PageArgs{Limit: 10, Offset: 10}, models.Filter{"email": "user1"})
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u19", page.Items[0].ID)
}

func TestSearch_PagingThroughOrchestrator(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.Handle("getUsersUnderMyNetwork", networkOf(30))

	o := listview.New[models.Account](10)
	require.NoError(t, o.RunSearch(context.Background(), hook, "email", "user25"))
	snap := o.Snapshot()
	assert.Equal(t, 1, snap.TotalPages)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "user25@example.com", snap.Items[0].Email)
}

func TestMatches_EmptyKeywordPassesThrough(t *testing.T) {
	a := models.Account{Email: "x@example.com"}
	assert.True(t, accounts.Matches(a, models.Filter{"email": ""}))
	assert.True(t, accounts.Matches(a, nil))
	assert.False(t, accounts.Matches(a, models.Filter{"email": "zzz"}))
}

func TestUpdate_ConfirmsBySubstring(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleData("updateUser", "User updated successfully")

	err := hook.Update(context.Background(), "u1", accounts.Patch{Username: "kim", UserLevel: 3})
	require.NoError(t, err)

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "u1", reqs[0].Variables["userId"])
	assert.EqualValues(t, 3, reqs[0].Variables["userLevel"])
}

func TestUpdate_UnexpectedReply(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleData("updateUser", "nothing changed")

	err := hook.Update(context.Background(), "u1", accounts.Patch{})
	assert.ErrorIs(t, err, accounts.ErrUnconfirmed)
	_, sent := fb.Requests()[0].Variables["userLevel"]
	assert.False(t, sent, "zero level is not sent")
}

func TestLastError_TracksMostRecentCall(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleErrors("updateUser", "Username already taken")

	err := hook.Update(context.Background(), "u1", accounts.Patch{Username: "kim"})
	require.Error(t, err)
	assert.Equal(t, "Username already taken", hook.LastError(), "the page banner shows the backend text")

	fb.HandleData("updateUser", "User updated successfully")
	require.NoError(t, hook.Update(context.Background(), "u1", accounts.Patch{Username: "kim"}))
	assert.Empty(t, hook.LastError())
}

func TestDelete(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleData("deleteUser", "User deleted successfully")

	require.NoError(t, hook.Delete(context.Background(), "u9"))
	assert.Equal(t, 1, fb.Count("deleteUser"))
}

func TestUserLevel(t *testing.T) {
	fb, _, hook := newHook(t)
	fb.HandleData("getUserInfo", map[string]any{"userLevel": "2"})

	lvl, err := hook.UserLevel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, lvl)
}

func TestLogin_SkipsAuth(t *testing.T) {
	fb, store, _ := newHook(t)
	fb.HandleData("login", "jwt-token")

	tok, err := store.Login(context.Background(), "Boss@Example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", tok)

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Authorization)
	assert.Equal(t, "boss@example.com", reqs[0].Variables["email"])
}

func TestHook_ExpiredCredential(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	store := accounts.New(gateway.New(fb.URL, nil, zap.NewNop()), zap.NewNop())
	cred := testutil.NewExpiredCredential()
	hook := store.For(cred)

	_, err := hook.List(context.Background(), models.PageArgs{Limit: 10})
	assert.ErrorIs(t, err, gateway.ErrSessionExpired)
	assert.True(t, cred.LoggedOut())
	assert.Empty(t, fb.Requests())
	assert.Equal(t, gateway.SessionExpiredMessage, hook.LastError())
}
