// Package owned fetches a Steam account's owned-games list.
//
// Two mutually exclusive modes exist per account. Private mode calls the
// authenticated IPlayerService GetOwnedGames endpoint with the account's
// API key, retrying rate-limited responses a bounded number of times
// before giving up. Public mode loads the account's public profile games
// page and extracts the embedded games-list JSON payload from its DOM
// attribute; entries from this mode carry a reduced field set, so callers
// must not assume parity with private mode.
package owned
