package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/unowned-ai/memoirs/pkg/memoirs"
	"github.com/unowned-ai/memoirs/pkg/version"
)

type HealthHandler struct {
	svc *memoirs.Service
	db  *sql.DB
}

func NewHealthHandler(svc *memoirs.Service, db *sql.DB) *HealthHandler {
	return &HealthHandler{svc: svc, db: db}
}

type healthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	DB          string `json:"db"`
	MemoirCount int    `json:"memoirCount"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		Version:     version.Version,
		DB:          "ok",
		MemoirCount: h.svc.Store().Len(),
	}

	if h.db == nil {
		resp.DB = "none"
	} else if err := h.db.PingContext(r.Context()); err != nil {
		resp.DB = err.Error()
		resp.Status = "degraded"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
