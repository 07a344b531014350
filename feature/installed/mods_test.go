package installed

import (
	"context"
	"path/filepath"
	"testing"

	"steam-library/core/steam"
	"steam-library/core/steamid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liblist = `// Half-Life mod descriptor
game "Action Half-Life"
developer "The A-Team"
developer_url "http://example.com/ahl"
type "multiplayer_only"
icon "ahl"
`

const gameinfo = `"GameInfo"
{
	game	"Research and Development"
	developer	"Matt Bortolino"
	type	"singleplayer_only"
}
`

func TestScan_GoldSrcMods(t *testing.T) {
	root := t.TempDir()
	hl := filepath.Join(steam.SteamAppsDir(root), "common", "Half-Life")

	writeFile(t, filepath.Join(hl, "ahl", "liblist.gam"), liblist)
	// First-party folder: excluded by prefix even with a descriptor.
	writeFile(t, filepath.Join(hl, "cstrike", "liblist.gam"), liblist)
	// Folder without a descriptor: skipped, not fatal.
	writeFile(t, filepath.Join(hl, "random", "readme.txt"), "not a mod")

	s := NewScanner(steam.Config{InstallPath: root, ImportMods: true}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	mod := recs[0]
	assert.Equal(t, steamid.NewMod(goldSrcAppID, steamid.ModID("ahl")).String(), mod.GameID)
	assert.Equal(t, "Action Half-Life", mod.Name)
	assert.Equal(t, "The A-Team", mod.Developer)
	assert.Equal(t, []string{"Multiplayer"}, mod.Tags)
	assert.Equal(t, map[string]string{"Developer": "http://example.com/ahl"}, mod.Links)
	assert.True(t, mod.Installed)
}

func TestScan_SourceMods(t *testing.T) {
	root := t.TempDir()
	sourcemods := filepath.Join(steam.SteamAppsDir(root), "sourcemods")

	writeFile(t, filepath.Join(sourcemods, "randd", "gameinfo.txt"), gameinfo)
	// Malformed descriptor: per-folder failure only.
	writeFile(t, filepath.Join(sourcemods, "broken", "gameinfo.txt"), "\"GameInfo\"\n{\n\t\"game")

	s := NewScanner(steam.Config{InstallPath: root, ImportMods: true}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	mod := recs[0]
	assert.Equal(t, steamid.NewMod(sourceModAppID, steamid.ModID("randd")).String(), mod.GameID)
	assert.Equal(t, "Research and Development", mod.Name)
	assert.Equal(t, []string{"Singleplayer"}, mod.Tags)
}

func TestScan_ModsDisabled(t *testing.T) {
	root := t.TempDir()
	hl := filepath.Join(steam.SteamAppsDir(root), "common", "Half-Life")
	writeFile(t, filepath.Join(hl, "ahl", "liblist.gam"), liblist)

	s := NewScanner(steam.Config{InstallPath: root, ImportMods: false}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseModDescriptor_IconResolution(t *testing.T) {
	root := t.TempDir()
	modDir := filepath.Join(root, "ahl")
	writeFile(t, filepath.Join(modDir, "liblist.gam"), liblist)
	writeFile(t, filepath.Join(modDir, "ahl.tga"), "tga")

	rec, err := parseModDescriptor(modDir, filepath.Join(modDir, "liblist.gam"), goldSrcAppID, "ahl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(modDir, "ahl")+".tga", rec.IconPath)
}

func TestParseModDescriptor_NoName(t *testing.T) {
	root := t.TempDir()
	modDir := filepath.Join(root, "empty")
	writeFile(t, filepath.Join(modDir, "liblist.gam"), "developer \"nobody\"\n")

	_, err := parseModDescriptor(modDir, filepath.Join(modDir, "liblist.gam"), goldSrcAppID, "empty")
	assert.Error(t, err)
}
