package installed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"steam-library/core/keyvalue"
	"steam-library/core/reconcile"
	"steam-library/core/steam"
	"steam-library/core/steamid"

	"go.uber.org/zap"
)

// Base app ids mods are keyed under: Half-Life for GoldSrc, Source SDK
// Base for Source mods.
const (
	goldSrcAppID   = 70
	sourceModAppID = 215
)

// First-party GoldSrc games live as folders next to the mods and are not
// mods themselves. Prefix match, case-sensitive.
var goldSrcFirstParty = []string{
	"bshift", "cstrike", "czero", "czeror", "dmc", "dod",
	"gearbox", "ricochet", "tfc", "valve",
}

// scanGoldSrcMods probes the Half-Life install folder for mod directories
// carrying a liblist.gam descriptor.
func (s *Scanner) scanGoldSrcMods() []reconcile.GameRecord {
	dir := filepath.Join(steam.SteamAppsDir(s.cfg.InstallPath), "common", "Half-Life")
	return s.scanModsDir(dir, goldSrcAppID, "liblist.gam", goldSrcFirstParty)
}

// scanSourceMods probes steamapps/sourcemods; every subfolder is a
// candidate.
func (s *Scanner) scanSourceMods() []reconcile.GameRecord {
	dir := filepath.Join(steam.SteamAppsDir(s.cfg.InstallPath), "sourcemods")
	return s.scanModsDir(dir, sourceModAppID, "gameinfo.txt", nil)
}

// scanModsDir walks one mod layout. A missing layout directory means no
// mods; a bad candidate folder is logged and skipped.
func (s *Scanner) scanModsDir(dir string, baseAppID uint64, descriptor string, excludedPrefixes []string) []reconcile.GameRecord {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var records []reconcile.GameRecord
candidates:
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		for _, prefix := range excludedPrefixes {
			if strings.HasPrefix(entry.Name(), prefix) {
				continue candidates
			}
		}
		modDir := filepath.Join(dir, entry.Name())
		rec, err := parseModDescriptor(modDir, filepath.Join(modDir, descriptor), baseAppID, entry.Name())
		if err != nil {
			s.logger.Warn("skipping mod folder", zap.String("dir", modDir), zap.Error(err))
			continue
		}
		records = append(records, *rec)
	}
	return records
}

// parseModDescriptor reads a liblist.gam or gameinfo.txt descriptor into a
// mod record.
func parseModDescriptor(modDir, path string, baseAppID uint64, dirName string) (*reconcile.GameRecord, error) {
	doc, err := keyvalue.ParseFile(path)
	if err != nil {
		return nil, err
	}

	// gameinfo.txt nests everything in a GameInfo block; liblist.gam is
	// flat.
	info := doc
	if gi := doc.Child("GameInfo"); !gi.Empty() {
		info = gi
	}

	name := strings.TrimSpace(trademarkStripper.Replace(info.Child("game").String("")))
	if name == "" {
		return nil, fmt.Errorf("descriptor has no game name")
	}

	rec := &reconcile.GameRecord{
		Source:     reconcile.SourceSteam,
		GameID:     steamid.NewMod(baseAppID, steamid.ModID(dirName)).String(),
		Name:       name,
		InstallDir: modDir,
		Installed:  true,
		Platform:   reconcile.PlatformPC,
		Developer:  info.Child("developer").String(""),
	}

	if icon := info.Child("icon").String(""); icon != "" {
		iconPath := filepath.Join(modDir, filepath.FromSlash(icon))
		if _, err := os.Stat(iconPath); err == nil {
			rec.IconPath = iconPath
		} else if _, err := os.Stat(iconPath + ".tga"); err == nil {
			rec.IconPath = iconPath + ".tga"
		}
	}

	switch modType := info.Child("type").String(""); {
	case strings.Contains(modType, "multiplayer"):
		rec.Tags = []string{"Multiplayer"}
	case strings.Contains(modType, "singleplayer"):
		rec.Tags = []string{"Singleplayer"}
	}

	links := map[string]string{}
	if u := info.Child("developer_url").String(""); u != "" {
		links["Developer"] = u
	}
	if u := info.Child("url_info").String(""); u != "" {
		links["Info"] = u
	}
	if len(links) > 0 {
		rec.Links = links
	}
	return rec, nil
}
