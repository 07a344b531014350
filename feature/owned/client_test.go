package owned

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"steam-library/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownedGamesPayload = `{
	"response": {
		"game_count": 2,
		"games": [
			{"appid": 440, "name": "Team Fortress 2", "playtime_forever": 90, "rtime_last_played": 1700000000},
			{"appid": 570, "name": "Dota 2", "playtime_forever": 10, "rtime_last_played": 0}
		]
	}
}`

func testFetcher(srv *httptest.Server) *Fetcher {
	f := NewFetcher(srv.Client(), nil)
	f.apiURL = srv.URL
	f.delay = time.Millisecond
	return f
}

func privateAccount() reconcile.AccountContext {
	return reconcile.AccountContext{SteamID: 76561198000000001, APIKey: "KEY", Private: true}
}

func TestFetchAPI_Success(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(ownedGamesPayload))
	}))
	defer srv.Close()

	games, err := testFetcher(srv).Fetch(context.Background(), privateAccount())
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, uint64(440), games[0].AppID)
	assert.Equal(t, "Team Fortress 2", games[0].Name)
	assert.Equal(t, int64(90), games[0].PlaytimeForever)
	assert.Equal(t, int64(1700000000), games[0].RtimeLastPlayed)

	assert.Equal(t, []string{"KEY"}, gotQuery["key"])
	assert.Equal(t, []string{"76561198000000001"}, gotQuery["steamid"])
	assert.Equal(t, []string{"1"}, gotQuery["include_appinfo"])
	assert.Equal(t, []string{"1"}, gotQuery["include_played_free_games"])
	assert.NotContains(t, gotQuery, "include_free_sub")
}

func TestFetchAPI_FreeSubRequested(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"response":{}}`))
	}))
	defer srv.Close()

	acct := privateAccount()
	acct.IncludeFreeSub = true
	_, err := testFetcher(srv).Fetch(context.Background(), acct)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, gotQuery["include_free_sub"])
}

func TestFetchAPI_RateLimitRecovers(t *testing.T) {
	// 429 four times, success on the fifth attempt.
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 5 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(ownedGamesPayload))
	}))
	defer srv.Close()

	games, err := testFetcher(srv).Fetch(context.Background(), privateAccount())
	require.NoError(t, err)
	assert.Len(t, games, 2)
	assert.Equal(t, 5, attempts)
}

func TestFetchAPI_RateLimitExhausted(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := testFetcher(srv).Fetch(context.Background(), privateAccount())
	require.Error(t, err)
	assert.Equal(t, 5, attempts)
	assert.ErrorIs(t, err, ErrAPIUnreachable)

	var se *reconcile.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, reconcile.KindRateLimited, se.Kind)
}

func TestFetchAPI_UnauthorizedNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testFetcher(srv).Fetch(context.Background(), privateAccount())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var se *reconcile.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, reconcile.KindAuth, se.Kind)
}

func TestFetchAPI_BadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": {"games": "nope"}}`))
	}))
	defer srv.Close()

	_, err := testFetcher(srv).Fetch(context.Background(), privateAccount())
	require.Error(t, err)

	var se *reconcile.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, reconcile.KindDeserialize, se.Kind)
}
