package health_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/leadhub/internal/app/features/health"
	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/testutil"
	"go.uber.org/zap"
)

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	gw := gateway.New("http://backend.test/graphql", nil, logger)
	handler := health.NewHandler(db.Client(), gw, logger)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()

	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", contentType, "application/json")
	}

	var response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
		Backend  *struct {
			Endpoint string `json:"endpoint"`
			InFlight int64  `json:"in_flight"`
		} `json:"backend"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if response.Status != "ok" {
		t.Errorf("status: got %q, want %q", response.Status, "ok")
	}
	if response.Database != "connected" {
		t.Errorf("database: got %q, want %q", response.Database, "connected")
	}
	if response.Backend == nil || response.Backend.Endpoint != "http://backend.test/graphql" {
		t.Errorf("backend: got %+v", response.Backend)
	} else if response.Backend.InFlight != 0 {
		t.Errorf("in_flight: got %d, want 0", response.Backend.InFlight)
	}
}
