package installed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"steam-library/core/reconcile"
	"steam-library/core/steam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifest(appID uint64, name string, flags AppState, installDir string) string {
	return fmt.Sprintf(`"AppState"
{
	"appid"	"%d"
	"name"	"%s"
	"StateFlags"	"%d"
	"installdir"	"%s"
}
`, appID, name, flags, installDir)
}

func writeManifest(t *testing.T, root string, appID uint64, content string) {
	t.Helper()
	writeFile(t, filepath.Join(steam.SteamAppsDir(root), fmt.Sprintf("appmanifest_%d.acf", appID)), content)
}

func makeGameDir(t *testing.T, root, sub, name string) string {
	t.Helper()
	dir := filepath.Join(steam.SteamAppsDir(root), sub, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

func TestScan_FullyInstalledGame(t *testing.T) {
	root := t.TempDir()
	gameDir := makeGameDir(t, root, "common", "Team Fortress 2")
	writeManifest(t, root, 440, manifest(440, "Team Fortress™ 2", StateFullyInstalled, "Team Fortress 2"))

	s := NewScanner(steam.Config{InstallPath: root}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, "440", got.GameID)
	assert.Equal(t, "Team Fortress 2", got.Name) // trademark stripped
	assert.Equal(t, gameDir, got.InstallDir)
	assert.True(t, got.Installed)
	assert.Equal(t, reconcile.PlatformPC, got.Platform)
}

func TestScan_NotFullyInstalledExcluded(t *testing.T) {
	root := t.TempDir()
	makeGameDir(t, root, "common", "Half-Life 2")
	writeManifest(t, root, 220, manifest(220, "Half-Life 2", StateUpdateRequired|StateDownloading, "Half-Life 2"))

	s := NewScanner(steam.Config{InstallPath: root}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestScan_MissingStateFlagsSkipped(t *testing.T) {
	root := t.TempDir()
	makeGameDir(t, root, "common", "Portal")
	writeManifest(t, root, 400, `"AppState"
{
	"appid"	"400"
	"name"	"Portal"
	"installdir"	"Portal"
}
`)

	s := NewScanner(steam.Config{InstallPath: root}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestScan_RedistributablesAlwaysExcluded(t *testing.T) {
	root := t.TempDir()
	makeGameDir(t, root, "common", "Steamworks Shared")
	writeManifest(t, root, 228980, manifest(228980, "Steamworks Common Redistributables", StateFullyInstalled, "Steamworks Shared"))

	s := NewScanner(steam.Config{InstallPath: root}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestScan_SoundtrackLayout(t *testing.T) {
	root := t.TempDir()
	dir := makeGameDir(t, root, "music", "Portal Soundtrack")
	writeManifest(t, root, 35140, manifest(35140, "Portal Soundtrack", StateFullyInstalled, "Portal Soundtrack"))

	s := NewScanner(steam.Config{InstallPath: root}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, dir, recs[0].InstallDir)
}

func TestScan_DetachedEntryDropped(t *testing.T) {
	root := t.TempDir()
	// Manifest present, but no common/ or music/ folder on disk.
	writeManifest(t, root, 500, manifest(500, "Left 4 Dead", StateFullyInstalled, "left 4 dead"))

	s := NewScanner(steam.Config{InstallPath: root}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestScan_MalformedManifestIsolated(t *testing.T) {
	root := t.TempDir()
	makeGameDir(t, root, "common", "Team Fortress 2")
	writeManifest(t, root, 440, manifest(440, "Team Fortress 2", StateFullyInstalled, "Team Fortress 2"))
	// Torn write from a concurrent updater.
	writeFile(t, filepath.Join(steam.SteamAppsDir(root), "appmanifest_220.acf"), "\"AppState\"\n{\n\t\"appid\"\t\"22")
	// In-progress temp file must be ignored entirely.
	writeFile(t, filepath.Join(steam.SteamAppsDir(root), "appmanifest_400.acf.tmp"), manifest(400, "Portal", StateFullyInstalled, "Portal"))

	s := NewScanner(steam.Config{InstallPath: root}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "440", recs[0].GameID)
}

func TestScan_SecondLibraryRoot(t *testing.T) {
	primary := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(steam.SteamAppsDir(primary), "libraryfolders.vdf"),
		"\"libraryfolders\"\n{\n\t\"0\"\t\""+second+"\"\n}\n")

	makeGameDir(t, primary, "common", "Portal")
	writeManifest(t, primary, 400, manifest(400, "Portal", StateFullyInstalled, "Portal"))
	makeGameDir(t, second, "common", "Dota 2")
	writeManifest(t, second, 570, manifest(570, "Dota 2", StateFullyInstalled, "Dota 2"))

	s := NewScanner(steam.Config{InstallPath: primary}, nil)
	recs, err := s.Scan(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, r := range recs {
		ids = append(ids, r.GameID)
	}
	assert.ElementsMatch(t, []string{"400", "570"}, ids)
}

func TestScan_MissingInstallRootFatal(t *testing.T) {
	s := NewScanner(steam.Config{InstallPath: filepath.Join(t.TempDir(), "gone")}, nil)
	_, err := s.Scan(context.Background())
	require.Error(t, err)

	var se *reconcile.StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, reconcile.KindSourceUnreadable, se.Kind)
}

func TestResolveInstallDir(t *testing.T) {
	root := t.TempDir()
	common := makeGameDir(t, root, "common", "Game A")
	appsDir := steam.SteamAppsDir(root)

	assert.Equal(t, common, resolveInstallDir(appsDir, "Game A"))
	assert.Empty(t, resolveInstallDir(appsDir, "Game B"))
	assert.Empty(t, resolveInstallDir(appsDir, ""))
}

func TestAppState_HasAllOf(t *testing.T) {
	s := StateFullyInstalled | StateUpdateOptional
	assert.True(t, s.HasAllOf(StateFullyInstalled))
	assert.False(t, s.HasAllOf(StateUninstalling))
	assert.False(t, StateUpdateRequired.HasAllOf(StateFullyInstalled))
}
