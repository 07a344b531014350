// Package family resolves the games shared with an account through Steam
// family sharing: an access token is exchanged for the caller's family
// group id, then the group's shared-library app list is fetched and
// renamed onto the standard owned-games schema.
package family

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
	familyGroupURL   = "https://api.steampowered.com/IFamilyGroupsService/GetFamilyGroupForUser/v1/"
	sharedLibraryURL = "https://api.steampowered.com/IFamilyGroupsService/GetSharedLibraryApps/v1/"
)

// Distinct user-facing failures: an expired token needs reauthorization,
// a missing group means family sharing simply is not set up.
var (
	ErrTokenExpired  = errors.New("family sharing access token expired, reauthorize family sharing")
	ErrNoFamilyGroup = errors.New("account is not a member of any family group")
)

// Resolver fetches the family-shared library for one access token. It
// implements reconcile.FamilySource.
type Resolver struct {
	client      *http.Client
	logger      *zap.Logger
	accessToken string
	steamID     uint64

	// Overridable in tests.
	groupURL   string
	libraryURL string
}

// NewResolver creates a resolver scoped to one account's token.
func NewResolver(client *http.Client, accessToken string, steamID uint64, logger *zap.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client:      client,
		logger:      logger,
		accessToken: accessToken,
		steamID:     steamID,
		groupURL:    familyGroupURL,
		libraryURL:  sharedLibraryURL,
	}
}

// Fetch resolves the caller's family group and returns its shared apps on
// the standard owned-games schema.
func (r *Resolver) Fetch(ctx context.Context) ([]reconcile.OwnedGame, error) {
	groupID, err := r.familyGroup(ctx)
	if err != nil {
		return nil, err
	}
	return r.sharedApps(ctx, groupID)
}

// familyGroup exchanges the access token for the caller's family group
// id. A 401 means the token expired; membership in no group is its own
// distinct failure.
func (r *Resolver) familyGroup(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("access_token", r.accessToken)

	body, status, err := r.get(ctx, r.groupURL+"?"+q.Encode())
	if err != nil {
		return "", reconcile.NewStageError("family sharing", reconcile.KindTransport, err)
	}
	switch {
	case status == http.StatusUnauthorized:
		return "", reconcile.NewStageError("family sharing", reconcile.KindAuth, ErrTokenExpired)
	case status != http.StatusOK:
		return "", reconcile.NewStageError("family sharing", reconcile.KindTransport,
			fmt.Errorf("family group lookup failed with HTTP %d", status))
	}

	var parsed struct {
		Response struct {
			FamilyGroupID       string `json:"family_groupid"`
			IsNotMemberOfAGroup bool   `json:"is_not_member_of_any_group"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", reconcile.NewStageError("family sharing", reconcile.KindDeserialize,
			fmt.Errorf("decode family group response: %w", err))
	}
	if parsed.Response.IsNotMemberOfAGroup || parsed.Response.FamilyGroupID == "" {
		return "", reconcile.NewStageError("family sharing", reconcile.KindAuth, ErrNoFamilyGroup)
	}
	return parsed.Response.FamilyGroupID, nil
}

// sharedApp is the shared-library schema. Steam names these fields
// differently from GetOwnedGames; toOwned is the renaming transform.
type sharedApp struct {
	AppID        uint64 `json:"appid"`
	Name         string `json:"name"`
	AppType      int    `json:"app_type"`
	RtPlaytime   int64  `json:"rt_playtime"`
	RtLastPlayed int64  `json:"rt_last_played"`
}

func (a sharedApp) toOwned() reconcile.OwnedGame {
	return reconcile.OwnedGame{
		AppID:           a.AppID,
		Name:            a.Name,
		AppType:         a.AppType,
		PlaytimeForever: a.RtPlaytime,
		RtimeLastPlayed: a.RtLastPlayed,
	}
}

// sharedApps fetches the group's shared-library list scoped to the
// caller's steam id, including non-game software.
func (r *Resolver) sharedApps(ctx context.Context, groupID string) ([]reconcile.OwnedGame, error) {
	q := url.Values{}
	q.Set("access_token", r.accessToken)
	q.Set("family_groupid", groupID)
	q.Set("steamid", strconv.FormatUint(r.steamID, 10))
	q.Set("include_own", "1")
	q.Set("include_excluded", "0")
	q.Set("include_non_games", "1")

	body, status, err := r.get(ctx, r.libraryURL+"?"+q.Encode())
	if err != nil {
		return nil, reconcile.NewStageError("family sharing", reconcile.KindTransport, err)
	}
	switch {
	case status == http.StatusUnauthorized:
		return nil, reconcile.NewStageError("family sharing", reconcile.KindAuth, ErrTokenExpired)
	case status != http.StatusOK:
		return nil, reconcile.NewStageError("family sharing", reconcile.KindTransport,
			fmt.Errorf("shared library fetch failed with HTTP %d", status))
	}

	var parsed struct {
		Response struct {
			Apps []sharedApp `json:"apps"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, reconcile.NewStageError("family sharing", reconcile.KindDeserialize,
			fmt.Errorf("decode shared library response: %w", err))
	}

	games := make([]reconcile.OwnedGame, 0, len(parsed.Response.Apps))
	for _, app := range parsed.Response.Apps {
		games = append(games, app.toOwned())
	}
	return games, nil
}

func (r *Resolver) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := r.client.Do(req)
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
