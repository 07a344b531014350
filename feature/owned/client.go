package owned

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"steam-library/core/reconcile"

	"go.uber.org/zap"
)

const (
	ownedGamesURL = "https://api.steampowered.com/IPlayerService/GetOwnedGames/v1/"

	// One initial attempt plus retries; every 429 waits retryDelay before
	// the next try.
	maxAttempts = 5
	retryDelay  = 2500 * time.Millisecond
)

// ErrAPIUnreachable marks a fetch that stayed rate-limited through every
// attempt. The user-facing remedy is checking the API key and
// connectivity.
var ErrAPIUnreachable = errors.New("Steam API is not responding, check the API key and connectivity")

// Fetcher retrieves owned-games lists in the mode each account context
// selects. It implements reconcile.OwnedSource.
type Fetcher struct {
	client *http.Client
	logger *zap.Logger

	// Overridable in tests.
	apiURL     string
	profileURL string
	delay      time.Duration
}

// NewFetcher creates a fetcher. A nil client falls back to a default with
// a sane timeout.
func NewFetcher(client *http.Client, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:     client,
		logger:     logger,
		apiURL:     ownedGamesURL,
		profileURL: profileGamesURL,
		delay:      retryDelay,
	}
}

// Fetch retrieves the account's owned games, choosing the authenticated
// endpoint or the public profile scrape by the account's privacy setting.
func (f *Fetcher) Fetch(ctx context.Context, acct reconcile.AccountContext) ([]reconcile.OwnedGame, error) {
	if acct.Private {
		return f.fetchAPI(ctx, acct)
	}
	return f.fetchProfile(ctx, acct)
}

// ownedGamesResponse is the GetOwnedGames envelope.
type ownedGamesResponse struct {
	Response struct {
		GameCount int                   `json:"game_count"`
		Games     []reconcile.OwnedGame `json:"games"`
	} `json:"response"`
}

// fetchAPI calls the authenticated owned-games endpoint. HTTP 429 retries
// with a fixed delay up to maxAttempts total; any other transport failure
// aborts immediately.
func (f *Fetcher) fetchAPI(ctx context.Context, acct reconcile.AccountContext) ([]reconcile.OwnedGame, error) {
	q := url.Values{}
	q.Set("key", acct.APIKey)
	q.Set("steamid", strconv.FormatUint(acct.SteamID, 10))
	q.Set("include_appinfo", "1")
	q.Set("include_played_free_games", "1")
	q.Set("format", "json")
	if acct.IncludeFreeSub {
		q.Set("include_free_sub", "1")
	}
	reqURL := f.apiURL + "?" + q.Encode()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, status, err := f.get(ctx, reqURL)
		if err != nil {
			return nil, reconcile.NewStageError("owned games", reconcile.KindTransport, err)
		}
		switch {
		case status == http.StatusTooManyRequests:
			f.logger.Debug("owned games fetch rate limited",
				zap.Int("attempt", attempt), zap.Uint64("steamid", acct.SteamID))
			if attempt == maxAttempts {
				return nil, reconcile.NewStageError("owned games", reconcile.KindRateLimited, ErrAPIUnreachable)
			}
			if err := f.wait(ctx); err != nil {
				return nil, err
			}
			continue
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return nil, reconcile.NewStageError("owned games", reconcile.KindAuth,
				fmt.Errorf("owned games request rejected (HTTP %d), check the API key", status))
		case status != http.StatusOK:
			return nil, reconcile.NewStageError("owned games", reconcile.KindTransport,
				fmt.Errorf("owned games request failed with HTTP %d", status))
		}

		var parsed ownedGamesResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, reconcile.NewStageError("owned games", reconcile.KindDeserialize,
				fmt.Errorf("decode owned games response: %w", err))
		}
		return parsed.Response.Games, nil
	}
	return nil, reconcile.NewStageError("owned games", reconcile.KindRateLimited, ErrAPIUnreachable)
}

// get performs one request and reads the body. The status is only valid
// when err is nil.
func (f *Fetcher) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// wait blocks for the fixed retry delay, honoring context cancellation.
func (f *Fetcher) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.delay):
		return nil
	}
}
