package steam

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"steam-library/core/reconcile"
	"steam-library/core/steamid"
)

// Config holds the Steam installation context and account credentials.
type Config struct {
	// InstallPath is the primary Steam installation root. Required for
	// any installed-games import.
	InstallPath string `mapstructure:"install_path" default:""`

	// SteamID is the primary account's 64-bit steam id.
	SteamID uint64 `mapstructure:"steam_id" default:"0"`

	// APIKey is the Steam Web API key for private-mode fetches.
	APIKey string `mapstructure:"api_key" default:""`

	// AccessToken authorizes family-sharing lookups.
	AccessToken string `mapstructure:"access_token" default:""`

	// Private selects the authenticated owned-games endpoint over the
	// public profile scrape.
	Private bool `mapstructure:"private" default:"true"`

	// Import toggles.
	ImportInstalled    bool `mapstructure:"import_installed" default:"true"`
	ImportUninstalled  bool `mapstructure:"import_uninstalled" default:"true"`
	ImportMods         bool `mapstructure:"import_mods" default:"true"`
	ConnectAccount     bool `mapstructure:"connect_account" default:"true"`
	ImportFamilyShared bool `mapstructure:"import_family_shared" default:"false"`
	ImportPlaytime     bool `mapstructure:"import_playtime" default:"true"`
	IncludeFreeSub     bool `mapstructure:"include_free_sub" default:"false"`

	// IgnoreOtherInstalled drops installed games no imported account
	// owns. Only effective with additional accounts configured.
	IgnoreOtherInstalled bool `mapstructure:"ignore_other_installed" default:"false"`

	// AdditionalAccounts is a comma-separated list of additional account
	// specs, each "steamid[:noplaytime][:freesub]".
	AdditionalAccounts string `mapstructure:"additional_accounts" default:""`
}

// SteamAppsDir returns the steamapps directory beneath a library root.
func SteamAppsDir(root string) string {
	return filepath.Join(root, "steamapps")
}

// LibraryFoldersPath returns the library-folder registry file beneath the
// installation root.
func (c Config) LibraryFoldersPath() string {
	return filepath.Join(SteamAppsDir(c.InstallPath), "libraryfolders.vdf")
}

// LocalConfigPath returns the per-user localconfig.vdf for a steam id.
func (c Config) LocalConfigPath(steamID uint64) string {
	account := strconv.FormatUint(steamid.AccountID(steamID), 10)
	return filepath.Join(c.InstallPath, "userdata", account, "config", "localconfig.vdf")
}

// Account returns the primary account context for the engine.
func (c Config) Account() reconcile.AccountContext {
	return reconcile.AccountContext{
		SteamID:        c.SteamID,
		APIKey:         c.APIKey,
		Private:        c.Private,
		ImportPlaytime: c.ImportPlaytime,
		IncludeFreeSub: c.IncludeFreeSub,
	}
}

// Settings assembles the engine settings from the config, including parsed
// additional accounts. Malformed additional-account specs are dropped, not
// fatal; the returned slice lists each dropped spec.
func (c Config) Settings() (reconcile.Settings, []string) {
	accounts, dropped := c.parseAdditionalAccounts()
	return reconcile.Settings{
		ImportInstalledGames:    c.ImportInstalled,
		ImportUninstalledGames:  c.ImportUninstalled,
		ConnectAccount:          c.ConnectAccount,
		ImportFamilySharedGames: c.ImportFamilyShared,
		IgnoreOtherInstalled:    c.IgnoreOtherInstalled,
		Account:                 c.Account(),
		AdditionalAccounts:      accounts,
	}, dropped
}

// parseAdditionalAccounts decodes the compact additional-accounts form.
// Accounts reuse the primary API key and auth mode; per-account flags
// adjust the playtime and free-sub toggles.
func (c Config) parseAdditionalAccounts() ([]reconcile.AccountContext, []string) {
	var accounts []reconcile.AccountContext
	var dropped []string
	for _, spec := range strings.Split(c.AdditionalAccounts, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		acct, err := parseAccountSpec(spec)
		if err != nil {
			dropped = append(dropped, spec)
			continue
		}
		acct.APIKey = c.APIKey
		acct.Private = c.Private
		accounts = append(accounts, acct)
	}
	return accounts, dropped
}

func parseAccountSpec(spec string) (reconcile.AccountContext, error) {
	parts := strings.Split(spec, ":")
	steamID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return reconcile.AccountContext{}, fmt.Errorf("invalid steam id %q: %w", parts[0], err)
	}
	acct := reconcile.AccountContext{SteamID: steamID, ImportPlaytime: true}
	for _, flag := range parts[1:] {
		switch flag {
		case "noplaytime":
			acct.ImportPlaytime = false
		case "freesub":
			acct.IncludeFreeSub = true
		default:
			return reconcile.AccountContext{}, fmt.Errorf("unknown account flag %q", flag)
		}
	}
	return acct, nil
}
