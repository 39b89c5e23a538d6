package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
	"github.com/husaynirfan1/lukisan-server/internal/service"
	"github.com/husaynirfan1/lukisan-server/internal/testutil"
)

func TestGuestSession_GetOrCreate(t *testing.T) {
	store := testutil.NewGuestStore(t)
	svc := service.NewGuestSessionService(store, domain.GuestSessionTTL, zaptest.NewLogger(t))

	first, err := svc.GetOrCreate()
	require.NoError(t, err)
	assert.Regexp(t, `^gsess_[0-9a-f]{32}$`, first.SessionID)
	assert.WithinDuration(t, time.Now().Add(domain.GuestSessionTTL), first.ExpiresAt, time.Minute)

	// A live session is reused, not replaced.
	second, err := svc.GetOrCreate()
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
}

func TestGuestSession_StaleSessionIsReplaced(t *testing.T) {
	store := testutil.NewGuestStore(t)
	svc := service.NewGuestSessionService(store, domain.GuestSessionTTL, zaptest.NewLogger(t))

	stale := domain.GuestSession{
		SessionID: "gsess_00000000000000000000000000000000",
		CreatedAt: time.Now().Add(-25 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.PutSession(stale))

	session, err := svc.GetOrCreate()
	require.NoError(t, err)
	assert.NotEqual(t, stale.SessionID, session.SessionID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	// The replacement is persisted before being handed out.
	persisted, err := store.GetSession()
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, session.SessionID, persisted.SessionID)
}

func TestGuestSession_Clear(t *testing.T) {
	store := testutil.NewGuestStore(t)
	svc := service.NewGuestSessionService(store, domain.GuestSessionTTL, zaptest.NewLogger(t))

	_, err := svc.GetOrCreate()
	require.NoError(t, err)
	testutil.NewGuestAssetBuilder().Build(t, store)
	testutil.NewGuestAssetBuilder().Build(t, store)

	svc.Clear()

	persisted, err := store.GetSession()
	require.NoError(t, err)
	assert.Nil(t, persisted)
	assert.Empty(t, store.ListActive())

	// Clearing twice is harmless.
	svc.Clear()
}
