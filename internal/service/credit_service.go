package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
	"github.com/husaynirfan1/lukisan-server/internal/repository"
)

// CreditService answers "how many more logos may this account acquire" and
// performs the matching deduction. Quota and Deduct share one arithmetic path
// so the gate check and the consumption can never drift apart.
type CreditService struct {
	accountRepo repository.AccountRepository
	dailyCap    int
	logger      *zap.Logger
}

func NewCreditService(accountRepo repository.AccountRepository, dailyCap int, logger *zap.Logger) *CreditService {
	if dailyCap <= 0 {
		dailyCap = domain.DailyFreeCap
	}
	return &CreditService{
		accountRepo: accountRepo,
		dailyCap:    dailyCap,
		logger:      logger,
	}
}

// Quota is read-only. A failed account read propagates as ErrQuotaLookup:
// the caller must treat it as "cannot proceed", never as zero credits.
func (s *CreditService) Quota(ctx context.Context, userID uuid.UUID) (domain.CreditQuota, error) {
	account, err := s.lookupAccount(ctx, userID)
	if err != nil {
		return domain.CreditQuota{}, err
	}
	return s.quotaFor(account, time.Now()), nil
}

func (s *CreditService) lookupAccount(ctx context.Context, userID uuid.UUID) (*domain.CreditAccount, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: account %s: %v", domain.ErrQuotaLookup, userID, err)
	}
	return account, nil
}

func (s *CreditService) quotaFor(account *domain.CreditAccount, now time.Time) domain.CreditQuota {
	var available int
	privileged := account.Tier == domain.TierPaid

	if privileged {
		available = account.Balance
	} else if !sameDay(time.Time(account.LastActivityDate), now) {
		// First activity of a new day: the full cap is back.
		available = s.dailyCap
	} else {
		available = s.dailyCap - account.DailyUsed
		if available < 0 {
			available = 0
		}
	}

	return domain.CreditQuota{
		Available:    available,
		IsPrivileged: privileged,
		CanAcquire:   available > 0,
	}
}

// Deduct consumes n credits using the same tier branch as Quota. It is a
// separate mutation from the transfer loop so consumption stays auditable and
// can be retried on its own if the write fails.
func (s *CreditService) Deduct(ctx context.Context, userID uuid.UUID, n int) error {
	if n <= 0 {
		return nil
	}

	account, err := s.lookupAccount(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now()
	if account.Tier == domain.TierPaid {
		if account.Balance < n {
			return domain.ErrInsufficientCredits
		}
		account.Balance -= n
	} else {
		if !sameDay(time.Time(account.LastActivityDate), now) {
			account.DailyUsed = 0
		}
		if s.dailyCap-account.DailyUsed < n {
			return domain.ErrInsufficientCredits
		}
		account.DailyUsed += n
		account.LastActivityDate = datatypes.Date(now)
	}
	account.UpdatedAt = now

	if err := s.accountRepo.Update(ctx, account); err != nil {
		return fmt.Errorf("deduct %d credits: %w", n, err)
	}

	s.logger.Info("credits deducted",
		zap.String("userId", userID.String()),
		zap.Int("count", n),
		zap.String("tier", string(account.Tier)))
	return nil
}

// Grant adds paid-tier credits (purchase / subscription renewal webhook path)
// and upgrades the account if it was still on the free tier.
func (s *CreditService) Grant(ctx context.Context, userID uuid.UUID, n int) error {
	if n <= 0 {
		return nil
	}

	account, err := s.lookupAccount(ctx, userID)
	if err != nil {
		return err
	}

	account.Tier = domain.TierPaid
	account.Balance += n
	account.UpdatedAt = time.Now()
	return s.accountRepo.Update(ctx, account)
}

// sameDay compares calendar dates only, in server local time.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
