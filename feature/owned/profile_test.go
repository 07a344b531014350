package owned

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"testing"

	"steam-library/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profilePage(payload string) string {
	return fmt.Sprintf(`<html><body>
<div class="profile_content">
<template id="gameslist_config" data-profile-gameslist="%s"></template>
</div>
</body></html>`, html.EscapeString(payload))
}

func profileFetcher(srv *httptest.Server) *Fetcher {
	f := NewFetcher(srv.Client(), nil)
	f.profileURL = srv.URL + "/profiles/%d/games/"
	return f
}

func publicAccount() reconcile.AccountContext {
	return reconcile.AccountContext{SteamID: 76561198000000001}
}

func TestFetchProfile_Success(t *testing.T) {
	payload := `{"rgGames":[{"appid":440,"name":"Team Fortress 2","playtime_forever":90,"rt_last_played":1700000000}]}`
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(profilePage(payload)))
	}))
	defer srv.Close()

	games, err := profileFetcher(srv).Fetch(context.Background(), publicAccount())
	require.NoError(t, err)
	assert.Equal(t, "/profiles/76561198000000001/games/", gotPath)

	require.Len(t, games, 1)
	assert.Equal(t, uint64(440), games[0].AppID)
	assert.Equal(t, "Team Fortress 2", games[0].Name)
	assert.Equal(t, int64(90), games[0].PlaytimeForever)
	assert.Equal(t, int64(1700000000), games[0].RtimeLastPlayed)
}

func TestFetchProfile_MissingAttribute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div>private profile</div></body></html>`))
	}))
	defer srv.Close()

	_, err := profileFetcher(srv).Fetch(context.Background(), publicAccount())
	require.Error(t, err)

	var se *reconcile.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, reconcile.KindTransport, se.Kind)
	assert.Contains(t, se.Message, "data-profile-gameslist")
}

func TestFetchProfile_BadPayloadIsDeserializeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(profilePage(`{"rgGames": 42}`)))
	}))
	defer srv.Close()

	_, err := profileFetcher(srv).Fetch(context.Background(), publicAccount())
	require.Error(t, err)

	var se *reconcile.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, reconcile.KindDeserialize, se.Kind)
}

func TestFetchProfile_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := profileFetcher(srv).Fetch(context.Background(), publicAccount())
	require.Error(t, err)

	var se *reconcile.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, reconcile.KindTransport, se.Kind)
}
