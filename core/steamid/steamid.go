// Package steamid holds the identifier types shared by the scanner, the
// activity enricher, and the reconciliation engine: plain app ids, the
// composite app+mod ids Steam uses for GoldSrc and Source mods, and the
// steamID64-to-account-id transform behind the userdata folder layout.
package steamid

import (
	"fmt"
	"hash/crc32"
	"strconv"
	"strings"
)

// steamID64 values offset the 32-bit account id by this base.
const accountIDBase = 76561197960265728

// GameID identifies one game: either a plain Steam app id or an app+mod
// pair for a legacy mod. The zero GameID is invalid.
type GameID struct {
	AppID uint64
	ModID uint64
	IsMod bool
}

// NewApp returns the GameID for a plain app id.
func NewApp(appID uint64) GameID {
	return GameID{AppID: appID}
}

// NewMod returns the composite GameID for a mod of the given base app.
func NewMod(appID, modID uint64) GameID {
	return GameID{AppID: appID, ModID: modID, IsMod: true}
}

// String is the canonical projection used everywhere a game id is stored
// or joined: "440" for apps, "70_2390499327" for mods.
func (id GameID) String() string {
	if id.IsMod {
		return strconv.FormatUint(id.AppID, 10) + "_" + strconv.FormatUint(id.ModID, 10)
	}
	return strconv.FormatUint(id.AppID, 10)
}

// Parse decodes a canonical game id string, accepting both the plain and
// the composite form.
func Parse(s string) (GameID, error) {
	app, mod, found := strings.Cut(s, "_")
	appID, err := strconv.ParseUint(app, 10, 64)
	if err != nil {
		return GameID{}, fmt.Errorf("invalid app id %q: %w", s, err)
	}
	if !found {
		return NewApp(appID), nil
	}
	modID, err := strconv.ParseUint(mod, 10, 64)
	if err != nil {
		return GameID{}, fmt.Errorf("invalid mod id %q: %w", s, err)
	}
	return NewMod(appID, modID), nil
}

// ModID derives the synthetic mod id for a mod installed in the named
// folder, matching the encoding Steam uses in localconfig activity keys:
// CRC32 of the lower-cased folder name with the high bit forced.
func ModID(dirName string) uint64 {
	sum := crc32.ChecksumIEEE([]byte(strings.ToLower(dirName)))
	return uint64(sum | 0x80000000)
}

// AccountID maps a steamID64 to the 32-bit account id Steam names the
// per-user userdata folder after.
func AccountID(steamID64 uint64) uint64 {
	if steamID64 > accountIDBase {
		return steamID64 - accountIDBase
	}
	return steamID64
}
