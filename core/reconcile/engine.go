package reconcile

import (
	"context"
	"time"

	"steam-library/core/steamid"

	"go.uber.org/zap"
)

// Family-shared app types above this are neither games nor software
// (1 = game, 2 = application) and are filtered out of the owned set.
const maxSharedAppType = 3

// Engine runs the full reconciliation pipeline: installed scan, remote
// owned fetches, family sharing, filtering, and the merge. It is stateless
// between runs; every invocation reads all sources fresh.
type Engine struct {
	installed InstalledSource
	activity  ActivitySource
	owned     OwnedSource
	family    FamilySource
	settings  Settings
	logger    *zap.Logger
}

// New creates an engine. Any source may be nil, which disables the
// corresponding stage regardless of settings.
func New(installed InstalledSource, activity ActivitySource, owned OwnedSource, family FamilySource, settings Settings, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		installed: installed,
		activity:  activity,
		owned:     owned,
		family:    family,
		settings:  settings,
		logger:    logger,
	}
}

// Run executes one reconciliation. Each stage isolates its own failure:
// the run always continues and always returns the records it could
// produce, with the most recent stage failure attached to the Result.
func (e *Engine) Run(ctx context.Context) Result {
	var lastErr *StageError
	fail := func(stage string, fallback ErrorKind, err error) {
		se := asStageError(stage, fallback, err)
		e.logger.Warn("reconciliation stage failed",
			zap.String("stage", se.Stage),
			zap.String("kind", string(se.Kind)),
			zap.Error(se.Err),
		)
		lastErr = se
	}

	// Step 1: installed scan, enriched with local activity data.
	installed := make(map[string]*GameRecord)
	var installedOrder []string
	if e.settings.ImportInstalledGames && e.installed != nil {
		recs, err := e.installed.Scan(ctx)
		if err != nil {
			fail("installed scan", KindSourceUnreadable, err)
		} else {
			activity := e.loadActivity()
			for i := range recs {
				rec := &recs[i]
				if act, ok := activity[rec.GameID]; ok {
					if act.LastPlayed != nil {
						rec.LastActivity = act.LastPlayed
					}
					if act.Playtime > 0 {
						rec.Playtime = act.Playtime
					}
				}
				if _, dup := installed[rec.GameID]; dup {
					continue
				}
				installed[rec.GameID] = rec
				installedOrder = append(installedOrder, rec.GameID)
			}
		}
	}

	// Step 2: owned sets, strictly sequential, failures isolated per
	// account so one bad account never drops another's games.
	owned := make(map[uint64]*OwnedGame)
	var ownedOrder []uint64
	add := func(games []OwnedGame, source string, importPlaytime bool) {
		for i := range games {
			g := games[i]
			if _, dup := owned[g.AppID]; dup {
				continue
			}
			g.Source = source
			if !importPlaytime {
				g.PlaytimeForever = 0
				g.RtimeLastPlayed = 0
			}
			owned[g.AppID] = &g
			ownedOrder = append(ownedOrder, g.AppID)
		}
	}

	if e.settings.ConnectAccount && e.owned != nil {
		games, err := e.owned.Fetch(ctx, e.settings.Account)
		if err != nil {
			fail("owned games", KindTransport, err)
		} else {
			add(games, SourceSteam, e.settings.Account.ImportPlaytime)
		}

		if e.settings.ImportFamilySharedGames && e.family != nil {
			shared, err := e.family.Fetch(ctx)
			if err != nil {
				fail("family sharing", KindTransport, err)
			} else {
				add(shared, SourceFamily, e.settings.Account.ImportPlaytime)
			}
		}

		for _, acct := range e.settings.AdditionalAccounts {
			games, err := e.owned.Fetch(ctx, acct)
			if err != nil {
				fail("additional account "+steamid.NewApp(acct.SteamID).String(), KindTransport, err)
				continue
			}
			add(games, SourceSteam, acct.ImportPlaytime)
		}
	}

	// Step 3: exclusion filters on the owned set.
	filtered := ownedOrder[:0]
	for _, appID := range ownedOrder {
		g := owned[appID]
		if g.Name == "" {
			e.logger.Debug("dropping unnamed owned entry", zap.Uint64("appid", appID))
			delete(owned, appID)
			continue
		}
		if g.Source == SourceFamily && g.AppType >= maxSharedAppType {
			e.logger.Debug("dropping non-game shared entry",
				zap.Uint64("appid", appID), zap.Int("app_type", g.AppType))
			delete(owned, appID)
			continue
		}
		filtered = append(filtered, appID)
	}
	ownedOrder = filtered

	// Step 4: optionally drop installed non-mod records other local
	// accounts installed but nobody in the owned set owns.
	if e.settings.IgnoreOtherInstalled && len(e.settings.AdditionalAccounts) > 0 {
		kept := installedOrder[:0]
		for _, id := range installedOrder {
			gid, err := steamid.Parse(id)
			if err == nil && !gid.IsMod {
				if _, owns := owned[gid.AppID]; !owns {
					e.logger.Debug("dropping unowned installed game", zap.String("game_id", id))
					delete(installed, id)
					continue
				}
			}
			kept = append(kept, id)
		}
		installedOrder = kept
	}

	// Steps 5 + 6: merge owned entries onto installed records, appending
	// the rest unless uninstalled import is disabled.
	games := make([]GameRecord, 0, len(installedOrder)+len(ownedOrder))
	merged := make(map[uint64]bool)
	for _, appID := range ownedOrder {
		g := owned[appID]
		if rec, ok := installed[steamid.NewApp(appID).String()]; ok {
			rec.Playtime = uint64(g.PlaytimeForever) * 60
			if ts := lastPlayed(g.RtimeLastPlayed); ts != nil {
				rec.LastActivity = ts
			}
			merged[appID] = true
		}
	}
	for _, id := range installedOrder {
		games = append(games, *installed[id])
	}
	for _, appID := range ownedOrder {
		if merged[appID] {
			continue
		}
		if !e.settings.ImportUninstalledGames {
			continue
		}
		g := owned[appID]
		games = append(games, GameRecord{
			Source:       g.Source,
			GameID:       steamid.NewApp(g.AppID).String(),
			Name:         g.Name,
			Platform:     PlatformPC,
			Playtime:     uint64(g.PlaytimeForever) * 60,
			LastActivity: lastPlayed(g.RtimeLastPlayed),
		})
	}

	return Result{Games: games, Err: lastErr}
}

// loadActivity reads local activity for the primary account. A missing or
// unreadable localconfig degrades to no enrichment, never to a run error.
func (e *Engine) loadActivity() map[string]Activity {
	if e.activity == nil || e.settings.Account.SteamID == 0 {
		return nil
	}
	act, err := e.activity.Load(e.settings.Account.SteamID)
	if err != nil {
		e.logger.Debug("no local activity data", zap.Error(err))
		return nil
	}
	return act
}

// lastPlayed converts an epoch-seconds value to a timestamp, treating
// anything at or before the epoch as never played.
func lastPlayed(epoch int64) *time.Time {
	if epoch <= 0 {
		return nil
	}
	ts := time.Unix(epoch, 0).UTC()
	if ts.Year() <= 1970 {
		return nil
	}
	return &ts
}
