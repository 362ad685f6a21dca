package handler

import (
	"context"
	"net/http"

	"github.com/veriwork/veriwork/internal/api/middleware"
	"github.com/veriwork/veriwork/internal/api/response"
)

// DBPinger verifies database connectivity.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      DBPinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db DBPinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

type databaseStatus struct {
	Connected bool `json:"connected"`
}

type healthData struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Database databaseStatus `json:"database"`
}

// ServeHTTP handles the health check request.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	data := healthData{
		Status:   "ok",
		Version:  h.version,
		Database: databaseStatus{Connected: true},
	}

	if h.db == nil || h.db.Ping(r.Context()) != nil {
		data.Status = "degraded"
		data.Database.Connected = false
	}

	response.Success(w, http.StatusOK, data, requestID)
}
