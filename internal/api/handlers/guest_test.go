package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/husaynirfan1/lukisan-server/internal/testutil"
)

func TestGuestHandler_CreateAsset(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]interface{}
		expectedStatus int
	}{
		{
			name: "successful create",
			request: map[string]interface{}{
				"payload":     []byte("png-bytes"),
				"prompt":      "minimalist fox logo",
				"category":    "animals",
				"aspectRatio": "1:1",
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "missing payload",
			request: map[string]interface{}{
				"prompt": "no payload",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing prompt",
			request: map[string]interface{}{
				"payload": []byte("png-bytes"),
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.Store.PurgeAll()

			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.APIURL("/guest/assets"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var result map[string]string
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Regexp(t, `^guest_\d+_[0-9a-f]+$`, result["id"])
			}
		})
	}
}

func TestGuestHandler_ListAssets(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Store.PurgeAll()

	live := testutil.NewGuestAssetBuilder().WithPrompt("fox").Build(t, ts.Store)
	testutil.NewGuestAssetBuilder().Expired().Build(t, ts.Store)

	resp, err := http.Get(ts.APIURL("/guest/assets"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var assets []struct {
		ID     string `json:"id"`
		Prompt string `json:"prompt"`
	}
	testutil.AssertJSONResponse(t, resp, &assets)

	// Expired assets never show up in the gallery.
	require.Len(t, assets, 1)
	assert.Equal(t, live.ID, assets[0].ID)

	// The listing carries metadata only, never the payload bytes.
	assert.Equal(t, "fox", assets[0].Prompt)
}

func TestGuestHandler_GetAssetPayload(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Store.PurgeAll()

	asset := testutil.NewGuestAssetBuilder().Build(t, ts.Store)
	expired := testutil.NewGuestAssetBuilder().Expired().Build(t, ts.Store)

	t.Run("live asset", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/guest/assets/" + asset.ID + "/payload"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, asset.Payload, body)
	})

	t.Run("expired asset", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/guest/assets/" + expired.ID + "/payload"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown asset", func(t *testing.T) {
		resp, err := http.Get(ts.APIURL("/guest/assets/guest_0_ffff/payload"))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestGuestHandler_Session(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Store.PurgeAll()
	ts.Store.ClearSession()

	resp, err := http.Get(ts.APIURL("/guest/session"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var session struct {
		SessionID string `json:"sessionId"`
	}
	testutil.AssertJSONResponse(t, resp, &session)
	assert.Regexp(t, `^gsess_[0-9a-f]{32}$`, session.SessionID)

	// A second fetch returns the same session.
	resp2, err := http.Get(ts.APIURL("/guest/session"))
	require.NoError(t, err)
	defer resp2.Body.Close()

	var again struct {
		SessionID string `json:"sessionId"`
	}
	testutil.AssertJSONResponse(t, resp2, &again)
	assert.Equal(t, session.SessionID, again.SessionID)

	// Clearing drops the session and any guest assets with it.
	testutil.NewGuestAssetBuilder().Build(t, ts.Store)

	req, err := http.NewRequest("DELETE", ts.APIURL("/guest/session"), nil)
	require.NoError(t, err)
	resp3, err := (&http.Client{}).Do(req)
	require.NoError(t, err)
	defer resp3.Body.Close()

	assert.Equal(t, http.StatusOK, resp3.StatusCode)
	assert.Empty(t, ts.Store.ListActive())
}
