package testutil

import (
	"context"
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestUser describes a signed-in dashboard user for handler tests.
type TestUser struct {
	Email string
	Level int
	Token string
}

// HeadOffice returns a level-1 user (the most privileged rank).
func HeadOffice() TestUser {
	return TestUser{Email: "head@test.com", Level: 1, Token: ValidToken()}
}

// TeamLead returns a level-3 user.
func TeamLead() TestUser {
	return TestUser{Email: "lead@test.com", Level: 3, Token: ValidToken()}
}

// Agent returns a level-5 user, below the dashboard entry rank.
func Agent() TestUser {
	return TestUser{Email: "agent@test.com", Level: 5, Token: ValidToken()}
}

// WithUser injects u into the request context the way LoadSessionUser does.
func WithUser(r *http.Request, u TestUser) *http.Request {
	sess := auth.NewSession("test-session")
	sess.Login(u.Token)
	sess.SetLevel(u.Level)
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:      sess.ID(),
		Email:   u.Email,
		Level:   u.Level,
		Session: sess,
	})
}
