package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/leadhub/internal/app/system/gateway"
	"github.com/dalemusser/leadhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client  *mongo.Client
	Gateway *gateway.Client
	Log     *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client, the
// backend gateway and logger.
func NewHandler(client *mongo.Client, gw *gateway.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Client:  client,
		Gateway: gw,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string       `json:"status"`
	Database string       `json:"database"`
	Message  string       `json:"message,omitempty"`
	Error    string       `json:"error,omitempty"`
	Backend  *backendInfo `json:"backend,omitempty"`
}

type backendInfo struct {
	Endpoint string `json:"endpoint"`
	InFlight int64  `json:"in_flight"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "backend":{"endpoint":"…","in_flight":0} }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
//
// The backend is reported, not probed: a GraphQL call would need a token.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}
	if h.Gateway != nil {
		resp.Backend = &backendInfo{
			Endpoint: h.Gateway.Endpoint(),
			InFlight: h.Gateway.InFlight(),
		}
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	_ = json.NewEncoder(w).Encode(resp)
}
