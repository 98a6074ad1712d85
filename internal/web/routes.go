package web

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/spacesedan/sentiview/internal/pipeline"
)

// SetupRouter wires the upload page, the analyze action and the health endpoint.
// healthy may be nil when the backend monitor is disabled.
func SetupRouter(analyzer pipeline.Analyzer, healthy *atomic.Bool, maxUploadBytes int64) (http.Handler, error) {
	h, err := NewHandler(analyzer, healthy, maxUploadBytes)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /analyze", h.Analyze)
	mux.HandleFunc("GET /healthz", h.Healthz)

	slog.Info("[Web] HTTP routes registered")
	return mux, nil
}
