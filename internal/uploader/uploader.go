package uploader

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/husaynirfan1/lukisan-server/internal/blob"
	"github.com/husaynirfan1/lukisan-server/internal/domain"
	"github.com/husaynirfan1/lukisan-server/internal/repository"
	"github.com/husaynirfan1/lukisan-server/internal/service"
)

const catalogWriteRetries = 3

// Uploader is the concrete durable-write collaborator behind a transfer: the
// payload goes into the blob store, the metadata into the user's catalog. A
// catalog failure removes the blob again, so an error never leaves a partial
// entry and the same asset can be retried on a later run.
type Uploader struct {
	blobs  *blob.Store
	logos  repository.LogoRepository
	logger *zap.Logger
}

var _ service.Uploader = (*Uploader)(nil)

func New(blobs *blob.Store, logos repository.LogoRepository, logger *zap.Logger) *Uploader {
	return &Uploader{
		blobs:  blobs,
		logos:  logos,
		logger: logger,
	}
}

func (u *Uploader) UploadAndPersist(ctx context.Context, req service.UploadRequest) error {
	ref, err := u.blobs.Put(req.Payload)
	if err != nil {
		return fmt.Errorf("store payload: %w", err)
	}

	logo := &domain.Logo{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Prompt:      req.Prompt,
		Category:    req.Category,
		AspectRatio: req.AspectRatio,
		BlobRef:     ref,
		SizeBytes:   int64(len(req.Payload)),
		Metadata:    datatypes.JSON([]byte(`{"source":"guest_transfer"}`)),
		CreatedAt:   time.Now(),
	}

	// Short exponential backoff absorbs transient catalog hiccups; anything
	// past that is surfaced as a per-asset failure.
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	err = backoff.Retry(func() error {
		return u.logos.Create(ctx, logo)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, catalogWriteRetries), ctx))
	if err != nil {
		if delErr := u.blobs.Delete(ref); delErr != nil {
			u.logger.Warn("failed to remove orphaned blob after catalog error",
				zap.String("ref", ref), zap.Error(delErr))
		}
		return fmt.Errorf("catalog write: %w", err)
	}
	return nil
}
