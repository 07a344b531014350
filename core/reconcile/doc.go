// Package reconcile merges a user's installed, owned, family-shared, and
// additional-account game sets into one canonical, deduplicated library.
//
// # Architecture
//
// The engine is a single linear pipeline per invocation:
//
//  1. Scan installed games across all library roots, enriched with local
//     activity data (last played, playtime overrides).
//  2. Fetch the primary account's owned games, then family-shared games,
//     then each additional account, strictly sequentially.
//  3. Filter the owned set (unnamed entries, non-game shared app types).
//  4. Optionally drop installed games owned by no imported account.
//  5. Merge: owned entries matching an installed id contribute playtime
//     and last activity; the installed record stays authoritative for
//     everything else. Unmatched owned entries append as uninstalled
//     records when uninstalled import is enabled.
//
// Every stage captures its own failure as a classified StageError instead
// of aborting the run: one broken manifest, mod folder, or account never
// discards the records the other sources produced. All failures are
// logged; the Result carries only the most recent one.
//
// Data sources plug in through the InstalledSource, ActivitySource,
// OwnedSource, and FamilySource interfaces, implemented under feature/.
package reconcile
