package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/husaynirfan1/lukisan-server/internal/api/middleware"
	"github.com/husaynirfan1/lukisan-server/internal/domain"
	"github.com/husaynirfan1/lukisan-server/internal/service"
)

type TransferHandler struct {
	transferService *service.TransferService
	creditService   *service.CreditService
	logger          *zap.Logger
}

func NewTransferHandler(transferService *service.TransferService, creditService *service.CreditService, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		creditService:   creditService,
		logger:          logger,
	}
}

// Transfer runs the guest-to-account reconciliation and then settles the
// credits for what actually made it across. Deduction is deliberately a
// second step: a failed deduction is logged and surfaced but does not undo
// the transfer.
func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.transferService.Transfer(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrQuotaLookup) {
			http.Error(w, "Could not determine credit balance", http.StatusBadGateway)
			return
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if result.TransferredCount > 0 {
		if err := h.creditService.Deduct(r.Context(), userID, result.TransferredCount); err != nil {
			h.logger.Error("credit deduction failed after transfer",
				zap.String("userId", userID.String()),
				zap.Int("count", result.TransferredCount),
				zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("credit deduction failed: %v", err))
		}
	}

	status := http.StatusOK
	if result.InsufficientCredits {
		status = http.StatusPaymentRequired
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}

func (h *TransferHandler) Credits(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	quota, err := h.creditService.Quota(r.Context(), userID)
	if err != nil {
		http.Error(w, "Could not determine credit balance", http.StatusBadGateway)
		return
	}

	writeJSON(w, quota)
}
