package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/husaynirfan1/lukisan-server/internal/api/middleware"
	"github.com/husaynirfan1/lukisan-server/internal/blob"
	"github.com/husaynirfan1/lukisan-server/internal/repository"
)

type LogoHandler struct {
	logoRepo repository.LogoRepository
	blobs    *blob.Store
}

func NewLogoHandler(logoRepo repository.LogoRepository, blobs *blob.Store) *LogoHandler {
	return &LogoHandler{logoRepo: logoRepo, blobs: blobs}
}

func (h *LogoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)
	if limit > 100 {
		limit = 100
	}

	logos, err := h.logoRepo.GetByUserID(r.Context(), userID, limit, offset)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	total, err := h.logoRepo.CountByUserID(r.Context(), userID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"logos": logos,
		"total": total,
	})
}

func (h *LogoHandler) GetPayload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid logo ID", http.StatusBadRequest)
		return
	}

	logo, err := h.logoRepo.GetByID(r.Context(), id)
	if err != nil || logo.UserID != userID {
		http.Error(w, "Logo not found", http.StatusNotFound)
		return
	}

	data, err := h.blobs.Open(logo.BlobRef)
	if err != nil {
		http.Error(w, "Logo payload unavailable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(data)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
