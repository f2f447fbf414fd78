package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/obras/internal/inventory"
	"github.com/erazemk/obras/internal/model"
)

// MovementsHandler handles movement endpoints.
type MovementsHandler struct {
	Service *inventory.Service
}

type createMovementRequest struct {
	ItemID       int64   `json:"item_id"`
	Origin       *string `json:"origin"`
	Destination  string  `json:"destination"`
	Responsible  string  `json:"responsible"`
	Reason       string  `json:"reason"`
	ReasonCustom string  `json:"reason_custom"`
	Notes        string  `json:"notes"`
}

// Create handles POST /api/movements. A missing origin defaults to the
// item's current site.
func (h *MovementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMovementRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID <= 0 {
		jsonError(w, http.StatusBadRequest, "item_id required")
		return
	}

	var origin string
	if req.Origin != nil {
		origin = *req.Origin
	} else {
		item, err := h.Service.GetItem(r.Context(), req.ItemID)
		if err != nil {
			storeError(w, r, err)
			return
		}
		origin = item.SiteName
	}

	movement, err := h.Service.RegisterMovement(r.Context(), model.NewMovement{
		ItemID:      req.ItemID,
		Origin:      origin,
		Destination: req.Destination,
		Responsible: req.Responsible,
		Reason:      model.ResolveReason(req.Reason, req.ReasonCustom),
		Notes:       req.Notes,
	})
	if err != nil {
		slog.Warn("movement registration failed", "item", req.ItemID, "error", err)
		storeError(w, r, err)
		return
	}

	slog.Info("movement registered", "item", movement.ItemID,
		"from", movement.OriginName, "to", movement.DestinationName,
		"responsible", movement.Responsible)
	jsonResponse(w, http.StatusCreated, movement)
}

// List handles GET /api/movements.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter model.MovementFilter
	q := r.URL.Query()

	if v := q.Get("item_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid item_id")
			return
		}
		filter.ItemID = id
	}

	filter.Responsible = q.Get("responsible")

	if v := q.Get("since"); v != "" {
		since, err := parseSince(v)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid since, use RFC 3339 or YYYY-MM-DD")
			return
		}
		filter.Since = since
	}

	movements, err := h.Service.ListMovements(r.Context(), filter)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, movements)
}

// Get handles GET /api/movements/{id}.
func (h *MovementsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	movement, err := h.Service.GetMovement(r.Context(), id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, movement)
}

func parseSince(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, v, time.Local)
}
