package installed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"steam-library/core/keyvalue"
	"steam-library/core/reconcile"
	"steam-library/core/steam"
	"steam-library/core/steamid"

	"go.uber.org/zap"
)

// Steamworks Common Redistributables: never a game, always excluded.
const redistributablesAppID = 228980

// appmanifest_<id>.acf; the .tmp variant Steam writes during updates never
// matches.
var manifestName = regexp.MustCompile(`^appmanifest_(\d+)\.acf$`)

// trademark symbols stripped from display names.
var trademarkStripper = strings.NewReplacer("™", "", "®", "")

// Scanner discovers installed games and mods across all library roots. It
// implements reconcile.InstalledSource.
type Scanner struct {
	cfg    steam.Config
	logger *zap.Logger
}

// NewScanner creates a scanner for the configured installation.
func NewScanner(cfg steam.Config, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{cfg: cfg, logger: logger}
}

// Scan walks every library root for installed apps, then the two legacy
// mod layouts. Per-manifest and per-mod-folder failures are logged and
// skipped; only a missing installation root is fatal.
func (s *Scanner) Scan(ctx context.Context) ([]reconcile.GameRecord, error) {
	if s.cfg.InstallPath == "" {
		return nil, reconcile.NewStageError("installed scan", reconcile.KindSourceUnreadable,
			fmt.Errorf("steam installation path is not configured"))
	}
	if _, err := os.Stat(s.cfg.InstallPath); err != nil {
		return nil, reconcile.NewStageError("installed scan", reconcile.KindSourceUnreadable,
			fmt.Errorf("steam installation path: %w", err))
	}

	var records []reconcile.GameRecord
	for _, root := range s.libraryRoots() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records = append(records, s.scanRoot(root)...)
	}

	if s.cfg.ImportMods {
		records = append(records, s.scanGoldSrcMods()...)
		records = append(records, s.scanSourceMods()...)
	}
	return records, nil
}

// scanRoot lists the root's appmanifest files and parses each one,
// error-isolated at manifest granularity.
func (s *Scanner) scanRoot(root string) []reconcile.GameRecord {
	appsDir := steam.SteamAppsDir(root)
	entries, err := os.ReadDir(appsDir)
	if err != nil {
		s.logger.Warn("unreadable library root", zap.String("path", appsDir), zap.Error(err))
		return nil
	}

	var records []reconcile.GameRecord
	for _, entry := range entries {
		if entry.IsDir() || !manifestName.MatchString(entry.Name()) {
			continue
		}
		rec, err := s.parseManifest(appsDir, filepath.Join(appsDir, entry.Name()))
		if err != nil {
			s.logger.Warn("skipping manifest", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// parseManifest turns one appmanifest into a record. A nil record with nil
// error means the app was deliberately excluded (not fully installed,
// soundtrack-only, or the redistributables package).
func (s *Scanner) parseManifest(appsDir, path string) (*reconcile.GameRecord, error) {
	doc, err := keyvalue.ParseFile(path)
	if err != nil {
		return nil, err
	}
	state := doc.Child("AppState")
	if state.Empty() {
		return nil, fmt.Errorf("no AppState block")
	}

	appID := state.Child("appid").Uint64(0)
	if appID == 0 {
		return nil, fmt.Errorf("missing or invalid appid")
	}
	if appID == redistributablesAppID {
		return nil, nil
	}

	flagsNode := state.Child("StateFlags")
	if flagsNode.Empty() {
		return nil, fmt.Errorf("missing StateFlags")
	}
	flags := AppState(flagsNode.Uint64(0))
	if flags == StateInvalid {
		return nil, fmt.Errorf("unparsable StateFlags %q", flagsNode.Value)
	}
	if !flags.HasAllOf(StateFullyInstalled) {
		return nil, nil
	}

	name := state.Child("name").String("")
	if name == "" {
		name = state.Child("UserConfig").Child("name").String("")
	}
	name = strings.TrimSpace(trademarkStripper.Replace(name))
	if name == "" {
		return nil, fmt.Errorf("no display name")
	}

	installDir := state.Child("installdir").String("")
	dir := resolveInstallDir(appsDir, installDir)
	if dir == "" {
		// Soundtrack-only or detached entry; not part of the installed set.
		s.logger.Info("app has no game directory, skipping",
			zap.Uint64("appid", appID), zap.String("installdir", installDir))
		return nil, nil
	}

	return &reconcile.GameRecord{
		Source:     reconcile.SourceSteam,
		GameID:     steamid.NewApp(appID).String(),
		Name:       name,
		InstallDir: dir,
		Installed:  true,
		Platform:   reconcile.PlatformPC,
	}, nil
}

// resolveInstallDir locates the app's content folder, preferring the game
// layout over the soundtrack layout.
func resolveInstallDir(appsDir, installDir string) string {
	if installDir == "" {
		return ""
	}
	for _, sub := range []string{"common", "music"} {
		dir := filepath.Join(appsDir, sub, installDir)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}
