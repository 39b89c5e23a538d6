package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
	"github.com/husaynirfan1/lukisan-server/internal/gueststore"
	"github.com/husaynirfan1/lukisan-server/internal/service"
)

// GuestHandler exposes the anonymous side of the app: the generation flow
// stores results here and the gallery previews them until the user signs in.
type GuestHandler struct {
	store    *gueststore.Store
	sessions *service.GuestSessionService
}

func NewGuestHandler(store *gueststore.Store, sessions *service.GuestSessionService) *GuestHandler {
	return &GuestHandler{store: store, sessions: sessions}
}

type CreateAssetRequest struct {
	Payload     []byte `json:"payload"`
	Prompt      string `json:"prompt"`
	Category    string `json:"category"`
	AspectRatio string `json:"aspectRatio"`
}

type AssetResponse struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	Category    string    `json:"category"`
	AspectRatio string    `json:"aspectRatio"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (h *GuestHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var req CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Payload) == 0 || req.Prompt == "" {
		http.Error(w, "Payload and prompt are required", http.StatusBadRequest)
		return
	}

	id, err := h.store.SaveAsset(req.Payload, req.Prompt, req.Category, req.AspectRatio)
	if err != nil {
		var storageErr *domain.StorageError
		if errors.As(err, &storageErr) {
			http.Error(w, "Guest storage unavailable", http.StatusInsufficientStorage)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"id": id})
}

func (h *GuestHandler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets := h.store.ListActive()

	resp := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		resp = append(resp, AssetResponse{
			ID:          a.ID,
			Prompt:      a.Prompt,
			Category:    a.Category,
			AspectRatio: a.AspectRatio,
			CreatedAt:   a.CreatedAt,
			ExpiresAt:   a.ExpiresAt,
		})
	}

	writeJSON(w, resp)
}

func (h *GuestHandler) GetAssetPayload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	asset, err := h.store.GetAsset(id)
	if err != nil {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}
	if asset.Expired(time.Now()) || asset.Transferred {
		http.Error(w, "Asset not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(asset.Payload)
}

func (h *GuestHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.GetOrCreate()
	if err != nil {
		http.Error(w, "Guest storage unavailable", http.StatusInternalServerError)
		return
	}

	writeJSON(w, session)
}

func (h *GuestHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear()
	writeJSON(w, map[string]bool{"success": true})
}
