// Package installed discovers locally installed Steam games and legacy
// mods.
//
// It resolves the set of library roots from the primary installation path
// plus the libraryfolders.vdf registry (both the legacy index->path and the
// modern index->{path} forms), then scans each root's steamapps directory
// for appmanifest files, keeping only apps whose state flags mark them
// fully installed and whose install directory actually exists on disk.
// Two legacy mod layouts are scanned as well: GoldSrc mods next to the
// Half-Life install (first-party folders excluded by prefix) and Source
// mods under steamapps/sourcemods.
//
// Scanning is best effort per unit: a single unreadable manifest or mod
// folder is logged and skipped, never aborting the rest of the scan. Only
// a missing installation root fails the scan as a whole.
package installed
