package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/leadhub/internal/app/features/dashboard"
	"github.com/dalemusser/leadhub/internal/app/system/navigation"
	"go.uber.org/zap"
)

func TestServeDashboard_Unauthenticated(t *testing.T) {
	handler := dashboard.NewHandler(nil, nil, zap.NewNop())

	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()

	handler.ServeDashboard(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/login" {
		t.Errorf("Location: got %q, want %q", location, "/login")
	}
}

func TestShortcuts_FollowLevel(t *testing.T) {
	has := func(list []dashboard.Shortcut, path string) bool {
		for _, s := range list {
			if s.Path == path {
				return true
			}
		}
		return false
	}

	tests := []struct {
		level int
		path  string
		want  bool
	}{
		{1, navigation.PathCompany, true},
		{2, navigation.PathCompany, true},
		{3, navigation.PathCompany, false},
		{3, navigation.PathUnallocated, true},
		{4, navigation.PathUnallocated, false},
		{4, navigation.PathAccounts, true},
		{4, navigation.TypePath("els"), true},
		{1, navigation.PathDashboard, false},
	}
	for _, tt := range tests {
		if got := has(dashboard.Shortcuts(tt.level), tt.path); got != tt.want {
			t.Errorf("level %d, %s: got %v, want %v", tt.level, tt.path, got, tt.want)
		}
	}
}

func TestShortcuts_CarryGroupLabel(t *testing.T) {
	for _, s := range dashboard.Shortcuts(1) {
		if s.Path == navigation.TypePath("stock_new") && s.Group != "주식 DB" {
			t.Errorf("group: got %q, want 주식 DB", s.Group)
		}
		if s.Path == navigation.TypePath("els") && s.Group != "" {
			t.Errorf("top-level entry should have no group, got %q", s.Group)
		}
	}
}
