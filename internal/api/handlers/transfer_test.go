package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husaynirfan1/lukisan-server/internal/domain"
	"github.com/husaynirfan1/lukisan-server/internal/testutil"
)

func TestTransferHandler_Transfer(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := &http.Client{}

	t.Run("moves guest assets and settles credits", func(t *testing.T) {
		ts.DB.Truncate(t)
		ts.Store.PurgeAll()

		user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
		testutil.NewGuestAssetBuilder().WithPrompt("fox").Build(t, ts.Store)
		testutil.NewGuestAssetBuilder().WithPrompt("owl").Build(t, ts.Store)

		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/transfer"), nil, token)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result domain.TransferResult
		testutil.AssertJSONResponse(t, resp, &result)
		assert.True(t, result.Success)
		testutil.AssertTransferCounts(t, &result, 2, 0, 0)

		// The local store is empty and the catalog has both logos.
		assert.Empty(t, ts.Store.ListActive())
		count, err := ts.Repos.Logo.CountByUserID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		// Two free credits were consumed.
		var account domain.CreditAccount
		require.NoError(t, ts.DB.DB.Where("user_id = ?", user.ID).First(&account).Error)
		assert.Equal(t, 2, account.DailyUsed)
	})

	t.Run("insufficient credits leaves everything in place", func(t *testing.T) {
		ts.DB.Truncate(t)
		ts.Store.PurgeAll()

		user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
		for i := 0; i < domain.DailyFreeCap+1; i++ {
			testutil.NewGuestAssetBuilder().Build(t, ts.Store)
		}

		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/transfer"), nil, token)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

		var result domain.TransferResult
		testutil.AssertJSONResponse(t, resp, &result)
		assert.False(t, result.Success)
		assert.True(t, result.InsufficientCredits)
		assert.Equal(t, domain.DailyFreeCap+1, result.CreditsNeeded)
		assert.Equal(t, domain.DailyFreeCap, result.CreditsAvailable)

		// Nothing moved, nothing was charged.
		assert.Len(t, ts.Store.ListActive(), domain.DailyFreeCap+1)
		count, err := ts.Repos.Logo.CountByUserID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("empty store succeeds without charging", func(t *testing.T) {
		ts.DB.Truncate(t)
		ts.Store.PurgeAll()

		user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/transfer"), nil, token)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result domain.TransferResult
		testutil.AssertJSONResponse(t, resp, &result)
		assert.True(t, result.Success)
		testutil.AssertTransferCounts(t, &result, 0, 0, 0)

		var account domain.CreditAccount
		require.NoError(t, ts.DB.DB.Where("user_id = ?", user.ID).First(&account).Error)
		assert.Zero(t, account.DailyUsed)
	})

	t.Run("unauthorized without token", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/transfer"), nil, "")
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestTransferHandler_Credits(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := &http.Client{}

	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	req := testutil.CreateAuthenticatedRequest(t, "GET", ts.APIURL("/credits"), nil, token)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var quota domain.CreditQuota
	testutil.AssertJSONResponse(t, resp, &quota)
	assert.Equal(t, domain.DailyFreeCap, quota.Available)
	assert.False(t, quota.IsPrivileged)
	assert.True(t, quota.CanAcquire)
}
