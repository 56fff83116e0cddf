package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/leadhub/internal/app/system/auth"
)

func TestSession_LoginLogout(t *testing.T) {
	s := auth.NewSession("")
	if s.IsValid() {
		t.Fatal("new session should not be valid")
	}

	s.Login(token(t, time.Now().Add(time.Hour)))
	if !s.IsValid() {
		t.Fatal("expected session to be valid after login")
	}
	if s.ID() == "" {
		t.Error("expected login to assign a session id")
	}

	s.Logout()
	if s.IsValid() || s.Token() != "" {
		t.Error("expected logout to clear the token")
	}
}

func TestSession_IsValid_Expiry(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"future exp", token(t, time.Now().Add(time.Minute)), true},
		{"past exp", token(t, time.Now().Add(-time.Minute)), false},
		{"garbage", "not-a-jwt", false},
	}

	for _, tt := range tests {
		s := auth.NewSession("x")
		s.Login(tt.token)
		if got := s.IsValid(); got != tt.want {
			t.Errorf("%s: IsValid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSession_ResolveLevel_OneTime(t *testing.T) {
	s := auth.NewSession("x")
	s.Login(token(t, time.Now().Add(time.Hour)))

	calls := 0
	who := func(context.Context) (int, error) { calls++; return 3, nil }

	for i := 0; i < 2; i++ {
		lvl, err := s.ResolveLevel(context.Background(), who)
		if err != nil || lvl != 3 {
			t.Fatalf("ResolveLevel = %d, %v", lvl, err)
		}
	}
	if calls != 1 {
		t.Errorf("expected one who-am-I call, got %d", calls)
	}
}

func TestSession_ResolveLevel_FailureDefaultsAndLogsOut(t *testing.T) {
	s := auth.NewSession("x")
	s.Login(token(t, time.Now().Add(time.Hour)))

	boom := errors.New("boom")
	lvl, err := s.ResolveLevel(context.Background(), func(context.Context) (int, error) { return 0, boom })

	if !errors.Is(err, boom) {
		t.Errorf("expected underlying error, got %v", err)
	}
	if lvl != auth.LeastPrivilegedLevel {
		t.Errorf("level = %d, want %d", lvl, auth.LeastPrivilegedLevel)
	}
	if s.IsValid() {
		t.Error("expected session to be logged out")
	}
}

func TestSession_ResolveLevel_NoLevel(t *testing.T) {
	s := auth.NewSession("x")
	s.Login(token(t, time.Now().Add(time.Hour)))

	lvl, err := s.ResolveLevel(context.Background(), func(context.Context) (int, error) { return 0, nil })
	if !errors.Is(err, auth.ErrNoLevel) {
		t.Errorf("expected ErrNoLevel, got %v", err)
	}
	if lvl != auth.LeastPrivilegedLevel {
		t.Errorf("level = %d, want %d", lvl, auth.LeastPrivilegedLevel)
	}
}

func TestSession_LoginForgetsLevel(t *testing.T) {
	s := auth.NewSession("x")
	s.Login(token(t, time.Now().Add(time.Hour)))
	s.SetLevel(2)

	s.Login(token(t, time.Now().Add(time.Hour)))
	if s.Level() != 0 {
		t.Errorf("expected level to be re-derived after login, got %d", s.Level())
	}
}
