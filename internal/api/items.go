package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/obras/internal/imaging"
	"github.com/erazemk/obras/internal/inventory"
	"github.com/erazemk/obras/internal/model"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	Service *inventory.Service
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.ItemFilter{
		Query: r.URL.Query().Get("q"),
		Site:  r.URL.Query().Get("site"),
	}
	items, err := h.Service.ListItems(r.Context(), filter)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.CreateItem(r.Context(), req)
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("item created", "item", item.ID, "name", item.Name, "site", item.SiteName)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Service.GetItem(r.Context(), id)
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// SetStatus handles PUT /api/items/{id}/status.
func (h *ItemsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Service.SetItemStatus(r.Context(), id, req.Status)
	if err != nil {
		storeError(w, r, err)
		return
	}

	slog.Info("item status changed", "item", id, "status", item.Status)
	jsonResponse(w, http.StatusOK, item)
}

// UploadPhoto handles PUT /api/items/{id}/photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUpload+1<<10)
	if err := r.ParseMultipartForm(imaging.MaxUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := h.Service.SetItemPhoto(r.Context(), id, file)
	if err != nil {
		storeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"mime":   photo.MIME,
		"width":  photo.Width,
		"height": photo.Height,
	})
}

// GetPhoto handles GET /api/items/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := h.Service.GetItemPhoto(r.Context(), id)
	if err != nil {
		storeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

// Movements handles GET /api/items/{id}/movements.
func (h *ItemsHandler) Movements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if _, err := h.Service.GetItem(r.Context(), id); err != nil {
		storeError(w, r, err)
		return
	}

	movements, err := h.Service.ListMovements(r.Context(), model.MovementFilter{ItemID: id})
	if err != nil {
		storeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, movements)
}
