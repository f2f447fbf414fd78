package api

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/obras/internal/inventory"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(svc *inventory.Service) http.Handler {
	mux := http.NewServeMux()

	sites := &SitesHandler{Service: svc}
	items := &ItemsHandler{Service: svc}
	movements := &MovementsHandler{Service: svc}

	mux.HandleFunc("GET /api/sites", sites.List)
	mux.HandleFunc("POST /api/sites", sites.Create)
	mux.HandleFunc("GET /api/sites/{id}", sites.Get)

	mux.HandleFunc("GET /api/items", items.List)
	mux.HandleFunc("POST /api/items", items.Create)
	mux.HandleFunc("GET /api/items/{id}", items.Get)
	mux.HandleFunc("PUT /api/items/{id}/status", items.SetStatus)
	mux.HandleFunc("PUT /api/items/{id}/photo", items.UploadPhoto)
	mux.HandleFunc("GET /api/items/{id}/photo", items.GetPhoto)
	mux.HandleFunc("GET /api/items/{id}/movements", items.Movements)

	mux.HandleFunc("GET /api/movements", movements.List)
	mux.HandleFunc("POST /api/movements", movements.Create)
	mux.HandleFunc("GET /api/movements/{id}", movements.Get)

	mux.HandleFunc("GET /api/summary", func(w http.ResponseWriter, r *http.Request) {
		sum, err := svc.Summary(r.Context())
		if err != nil {
			storeError(w, r, err)
			return
		}
		jsonResponse(w, http.StatusOK, sum)
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := svc.Ping(ctx); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if svc.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(svc.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	return mux
}
