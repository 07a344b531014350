// Package activity recovers last-played timestamps and playtime overrides
// from a user's local Steam configuration. Enrichment is best effort: a
// missing localconfig file means no activity data, never an error.
package activity

import (
	"os"
	"strings"
	"time"

	"steam-library/core/keyvalue"
	"steam-library/core/reconcile"
	"steam-library/core/steam"
	"steam-library/core/steamid"

	"go.uber.org/zap"
)

// Enricher reads per-account localconfig.vdf files. It implements
// reconcile.ActivitySource.
type Enricher struct {
	cfg    steam.Config
	logger *zap.Logger
}

// NewEnricher creates an enricher for the configured installation.
func NewEnricher(cfg steam.Config, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{cfg: cfg, logger: logger}
}

// Load reads the account's per-app activity section and returns activity
// keyed by canonical game id. A missing file returns an empty map and no
// error; anything else unreadable returns the error for the caller to log.
func (e *Enricher) Load(steamID uint64) (map[string]reconcile.Activity, error) {
	path := e.cfg.LocalConfigPath(steamID)
	doc, err := keyvalue.ParseFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]reconcile.Activity{}, nil
		}
		return nil, err
	}

	apps := doc.Child("UserLocalConfigStore").
		Child("Software").
		Child("Valve").
		Child("Steam").
		Child("apps")

	result := make(map[string]reconcile.Activity, len(apps.Children))
	for _, app := range apps.Children {
		if len(app.Children) == 0 {
			continue
		}
		id, ok := e.gameID(app.Name)
		if !ok {
			continue
		}

		var act reconcile.Activity
		if epoch := app.Child("LastPlayed").Int(0); epoch > 0 {
			ts := time.Unix(epoch, 0).UTC()
			// Steam writes the epoch itself for never-played apps.
			if ts.Year() > 1970 {
				act.LastPlayed = &ts
			}
		}
		act.Playtime = app.Child("Playtime").Uint64(0) * 60
		if act.LastPlayed == nil && act.Playtime == 0 {
			continue
		}
		result[id] = act
	}
	return result, nil
}

// gameID canonicalizes an activity key, re-encoding composite appId_modId
// names through the shared GameID scheme so mod records join correctly.
// Malformed ids are dropped with a log, never fatal.
func (e *Enricher) gameID(name string) (string, bool) {
	id, err := steamid.Parse(name)
	if err != nil {
		if strings.Contains(name, "_") {
			e.logger.Debug("malformed composite activity id", zap.String("id", name))
		} else {
			e.logger.Debug("malformed activity id", zap.String("id", name))
		}
		return "", false
	}
	return id.String(), true
}
