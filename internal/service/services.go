package service

import (
	"go.uber.org/zap"

	"github.com/husaynirfan1/lukisan-server/internal/config"
	"github.com/husaynirfan1/lukisan-server/internal/gueststore"
	"github.com/husaynirfan1/lukisan-server/internal/repository"
)

type Services struct {
	Auth         *AuthService
	Credit       *CreditService
	GuestSession *GuestSessionService
	Transfer     *TransferService
}

func NewServices(repos *repository.Repositories, store *gueststore.Store, up Uploader, cfg *config.Config, logger *zap.Logger) *Services {
	auth := NewAuthService(repos.User, repos.Session, repos.Account, cfg, logger)
	credit := NewCreditService(repos.Account, cfg.DailyFreeCap, logger)

	return &Services{
		Auth:         auth,
		Credit:       credit,
		GuestSession: NewGuestSessionService(store, cfg.GuestSessionTTL, logger),
		Transfer:     NewTransferService(store, credit, auth, up, logger),
	}
}
