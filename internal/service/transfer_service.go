package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
	"github.com/husaynirfan1/lukisan-server/internal/gueststore"
)

// UploadRequest carries one guest asset into durable storage.
type UploadRequest struct {
	Payload     []byte
	Prompt      string
	Category    string
	AspectRatio string
	UserID      uuid.UUID
}

// Uploader is the durable-write collaborator for a transfer. An
// implementation must be all-or-nothing: on error no catalog entry may
// remain, so the orchestrator can safely retry the asset on a later run.
type Uploader interface {
	UploadAndPersist(ctx context.Context, req UploadRequest) error
}

// AccountVerifier re-confirms the target account's authentication is live
// before the transfer performs any durable write.
type AccountVerifier interface {
	VerifySession(ctx context.Context, userID uuid.UUID) error
}

// TransferService migrates guest assets into a signed-in user's durable
// catalog: quota gate first, then a strictly sequential per-asset loop.
// Per-asset failures are contained in the result; only an auth or quota
// lookup failure aborts the run.
type TransferService struct {
	store    *gueststore.Store
	credits  *CreditService
	verifier AccountVerifier
	uploader Uploader
	logger   *zap.Logger

	// inFlight rejects a second concurrent run for this instance. The
	// skipped caller gets an empty successful result; the next trigger
	// (sign-in, visibility change) retries naturally.
	inFlight atomic.Bool
}

func NewTransferService(store *gueststore.Store, credits *CreditService, verifier AccountVerifier, uploader Uploader, logger *zap.Logger) *TransferService {
	return &TransferService{
		store:    store,
		credits:  credits,
		verifier: verifier,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *TransferService) Transfer(ctx context.Context, userID uuid.UUID) (*domain.TransferResult, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Info("transfer already in progress, skipping",
			zap.String("userId", userID.String()))
		return &domain.TransferResult{Success: true}, nil
	}
	defer s.inFlight.Store(false)

	assets := s.store.ListActive()
	if len(assets) == 0 {
		// Common case for returning users, not an error.
		return &domain.TransferResult{Success: true}, nil
	}

	quota, err := s.credits.Quota(ctx, userID)
	if err != nil {
		// Unknown quota is not zero quota; the caller must see the failure.
		return nil, err
	}

	result := &domain.TransferResult{
		CreditsNeeded:    len(assets),
		CreditsAvailable: quota.Available,
	}

	// All-or-nothing at the gate: partial-credit transfers are not allowed.
	if !quota.CanAcquire || quota.Available < len(assets) {
		result.InsufficientCredits = true
		result.Errors = append(result.Errors, fmt.Sprintf(
			"transfer needs %d credits but only %d available", len(assets), quota.Available))
		return result, nil
	}

	if err := s.verifier.VerifySession(ctx, userID); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("authentication failed: %v", err))
		return result, nil
	}

	for _, asset := range assets {
		// Time has passed since the scan; expiry is re-checked per asset.
		if asset.Expired(time.Now()) {
			s.store.DeleteAsset(asset.ID)
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("asset %s expired before transfer", asset.ID))
			continue
		}

		// A record that vanished or was already marked means another run
		// got here first; it must not be transferred twice.
		current, err := s.store.GetAsset(asset.ID)
		if err != nil || current.Transferred {
			result.SkippedCount++
			continue
		}

		err = s.uploader.UploadAndPersist(ctx, UploadRequest{
			Payload:     asset.Payload,
			Prompt:      asset.Prompt,
			Category:    asset.Category,
			AspectRatio: asset.AspectRatio,
			UserID:      userID,
		})
		if err != nil {
			// The local record stays untouched so the next sign-in can
			// retry it; no tight retry loop here.
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("upload failed for %s: %v", asset.ID, err))
			s.logger.Warn("guest asset upload failed",
				zap.String("assetId", asset.ID), zap.Error(err))
			continue
		}

		// Mark before delete: a concurrent read between the two steps sees
		// the transferred flag and skips the asset.
		s.store.MarkTransferred(asset.ID)
		s.store.DeleteAsset(asset.ID)
		result.TransferredCount++
	}

	result.Success = result.TransferredCount > 0

	s.logger.Info("guest asset transfer finished",
		zap.String("userId", userID.String()),
		zap.Int("transferred", result.TransferredCount),
		zap.Int("failed", result.FailedCount),
		zap.Int("skipped", result.SkippedCount))
	return result, nil
}
