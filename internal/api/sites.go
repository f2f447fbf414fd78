package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/obras/internal/inventory"
)

// SitesHandler handles site endpoints.
type SitesHandler struct {
	Service *inventory.Service
}

type createSiteRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/sites.
func (h *SitesHandler) List(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Service.ListSites(r.Context())
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, sites)
}

// Create handles POST /api/sites. An existing site with the same name is
// returned with 200 instead of 201.
func (h *SitesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSiteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	site, created, err := h.Service.CreateSite(r.Context(), req.Name)
	if err != nil {
		storeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		slog.Info("site created", "site", site.Name, "id", site.ID)
	}
	jsonResponse(w, status, site)
}

// Get handles GET /api/sites/{id}.
func (h *SitesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	site, err := h.Service.GetSite(r.Context(), id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, site)
}
