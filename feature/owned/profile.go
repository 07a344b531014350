package owned

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"steam-library/core/reconcile"

	"github.com/PuerkitoBio/goquery"
)

const profileGamesURL = "https://steamcommunity.com/profiles/%d/games/?tab=all"

// gameslistSelector matches the template node the profile page embeds its
// games list into.
const (
	gameslistSelector = "#gameslist_config"
	gameslistAttr     = "data-profile-gameslist"
)

// profileGames is the embedded payload's shape. Only a subset of the
// private API's fields is present.
type profileGames struct {
	Games []struct {
		AppID           uint64 `json:"appid"`
		Name            string `json:"name"`
		PlaytimeForever int64  `json:"playtime_forever"`
		RtLastPlayed    int64  `json:"rt_last_played"`
	} `json:"rgGames"`
}

// fetchProfile loads the public profile games page and extracts the
// embedded games-list JSON from its DOM attribute.
func (f *Fetcher) fetchProfile(ctx context.Context, acct reconcile.AccountContext) ([]reconcile.OwnedGame, error) {
	reqURL := fmt.Sprintf(f.profileURL, acct.SteamID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, reconcile.NewStageError("profile games", reconcile.KindTransport, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, reconcile.NewStageError("profile games", reconcile.KindTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, reconcile.NewStageError("profile games", reconcile.KindTransport,
			fmt.Errorf("profile page request failed with HTTP %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, reconcile.NewStageError("profile games", reconcile.KindTransport,
			fmt.Errorf("parse profile page: %w", err))
	}

	payload, ok := doc.Find(gameslistSelector).Attr(gameslistAttr)
	if !ok {
		return nil, reconcile.NewStageError("profile games", reconcile.KindTransport,
			fmt.Errorf("games list attribute %s not found on profile page, the profile may be private", gameslistAttr))
	}

	var parsed profileGames
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, reconcile.NewStageError("profile games", reconcile.KindDeserialize,
			fmt.Errorf("decode games list payload: %w", err))
	}

	games := make([]reconcile.OwnedGame, 0, len(parsed.Games))
	for _, g := range parsed.Games {
		games = append(games, reconcile.OwnedGame{
			AppID:           g.AppID,
			Name:            g.Name,
			PlaytimeForever: g.PlaytimeForever,
			RtimeLastPlayed: g.RtLastPlayed,
		})
	}
	return games, nil
}
