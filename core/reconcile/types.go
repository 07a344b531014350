package reconcile

import (
	"context"
	"time"
)

// Source names stamped onto records so the host can tell a normal account
// import from a family-shared one.
const (
	SourceSteam  = "Steam"
	SourceFamily = "Steam Family"
)

// PlatformPC is the platform tag for every record this engine produces.
const PlatformPC = "pc_windows"

// GameRecord is the canonical output unit of a reconciliation run.
type GameRecord struct {
	// Source names the library the record originated from.
	Source string `json:"source"`

	// GameID is the external id: the decimal app id, or the composite
	// "appId_modId" projection for mods. Unique within one Result.
	GameID string `json:"game_id"`

	// Name is the cleaned display name.
	Name string `json:"name"`

	// InstallDir is the resolved installation directory, empty when the
	// game is not installed locally.
	InstallDir string `json:"install_dir,omitempty"`

	// Installed reports whether the game was found on disk.
	Installed bool `json:"installed"`

	// Platform is always PlatformPC in this engine.
	Platform string `json:"platform"`

	// Playtime is total playtime in seconds.
	Playtime uint64 `json:"playtime"`

	// LastActivity is the last-played timestamp, nil when unknown.
	LastActivity *time.Time `json:"last_activity,omitempty"`

	// Developer, Tags, Links and IconPath carry mod-descriptor metadata
	// and stay empty for regular apps.
	Developer string            `json:"developer,omitempty"`
	Tags      []string          `json:"tags,omitempty"`
	Links     map[string]string `json:"links,omitempty"`
	IconPath  string            `json:"icon_path,omitempty"`
}

// OwnedGame is one remote-library entry prior to reconciliation. The json
// tags match the IPlayerService GetOwnedGames response, so fetchers decode
// into it directly; profile-page and family-shared sources fill the subset
// of fields they carry.
type OwnedGame struct {
	AppID           uint64 `json:"appid"`
	Name            string `json:"name"`
	AppType         int    `json:"app_type"`
	PlaytimeForever int64  `json:"playtime_forever"`
	RtimeLastPlayed int64  `json:"rtime_last_played"`

	// Source is stamped by the engine during the merge.
	Source string `json:"-"`
}

// AccountContext identifies one remote account to import from.
type AccountContext struct {
	// SteamID is the 64-bit steam id of the account.
	SteamID uint64

	// APIKey authenticates private-mode fetches. Ignored in public mode.
	APIKey string

	// Private selects the authenticated owned-games endpoint; false falls
	// back to scraping the public profile page.
	Private bool

	// ImportPlaytime controls whether this account's playtime and
	// last-played values are kept or zeroed on import.
	ImportPlaytime bool

	// IncludeFreeSub requests free-subscription titles (private mode only).
	IncludeFreeSub bool
}

// Settings are the per-run import toggles.
type Settings struct {
	ImportInstalledGames    bool
	ImportUninstalledGames  bool
	ConnectAccount          bool
	ImportFamilySharedGames bool

	// IgnoreOtherInstalled drops installed non-mod records whose id is not
	// in the combined owned set. Only effective when additional accounts
	// are configured.
	IgnoreOtherInstalled bool

	// Account is the primary account; AdditionalAccounts are fetched
	// sequentially after it, each with its own toggles.
	Account            AccountContext
	AdditionalAccounts []AccountContext
}

// Activity is one app's local activity data from localconfig.vdf.
type Activity struct {
	// LastPlayed is nil when the app was never played.
	LastPlayed *time.Time

	// Playtime is the local playtime override in seconds, 0 when absent.
	Playtime uint64
}

// Result is a reconciliation run's output: the ordered record list plus at
// most one surfaced failure. Partial results are always returned; Err only
// reports the most recent stage failure (earlier ones are logged).
type Result struct {
	Games []GameRecord `json:"games"`
	Err   *StageError  `json:"error,omitempty"`
}

// InstalledSource scans local library roots for installed games and mods.
type InstalledSource interface {
	Scan(ctx context.Context) ([]GameRecord, error)
}

// ActivitySource loads local per-app activity keyed by canonical game id.
type ActivitySource interface {
	Load(steamID uint64) (map[string]Activity, error)
}

// OwnedSource fetches one account's owned games in the mode the account
// context selects.
type OwnedSource interface {
	Fetch(ctx context.Context, acct AccountContext) ([]OwnedGame, error)
}

// FamilySource fetches the family-shared library for the configured access
// token, already renamed onto the OwnedGame schema.
type FamilySource interface {
	Fetch(ctx context.Context) ([]OwnedGame, error)
}
