package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
	"github.com/husaynirfan1/lukisan-server/internal/gueststore"
)

// GuestSessionService is the single source of truth for the current guest
// identity. It never hands out an expired session: a stale or missing record
// is replaced by a freshly minted one before returning.
type GuestSessionService struct {
	store      *gueststore.Store
	sessionTTL time.Duration
	logger     *zap.Logger
}

func NewGuestSessionService(store *gueststore.Store, sessionTTL time.Duration, logger *zap.Logger) *GuestSessionService {
	if sessionTTL <= 0 {
		sessionTTL = domain.GuestSessionTTL
	}
	return &GuestSessionService{
		store:      store,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func (s *GuestSessionService) GetOrCreate() (domain.GuestSession, error) {
	now := time.Now()

	existing, err := s.store.GetSession()
	if err != nil {
		return domain.GuestSession{}, err
	}
	if existing != nil && !existing.Expired(now) {
		return *existing, nil
	}

	session := domain.GuestSession{
		SessionID: newSessionID(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.PutSession(session); err != nil {
		return domain.GuestSession{}, err
	}

	s.logger.Info("minted guest session", zap.String("sessionId", session.SessionID))
	return session, nil
}

// Clear drops the persisted session and every guest asset it scoped. Used on
// sign-out and after a completed transfer.
func (s *GuestSessionService) Clear() {
	s.store.ClearSession()
	s.store.PurgeAll()
}

func newSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return fmt.Sprintf("gsess_%s", hex.EncodeToString(buf))
}
