package installed

import (
	"os"
	"strconv"
	"strings"

	"steam-library/core/keyvalue"

	"go.uber.org/zap"
)

// libraryRoots resolves the set of filesystem roots that may contain an
// app library: the primary installation path plus every existing entry of
// its libraryfolders.vdf registry, collapsed case-insensitively.
func (s *Scanner) libraryRoots() []string {
	roots := []string{s.cfg.InstallPath}
	seen := map[string]bool{normalizePath(s.cfg.InstallPath): true}

	doc, err := keyvalue.ParseFile(s.cfg.LibraryFoldersPath())
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("unreadable library folder registry",
				zap.String("path", s.cfg.LibraryFoldersPath()), zap.Error(err))
		}
		return roots
	}

	for _, path := range registryPaths(doc.Child("libraryfolders")) {
		if seen[normalizePath(path)] {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			s.logger.Warn("library folder entry does not exist, skipping",
				zap.String("path", path))
			continue
		}
		seen[normalizePath(path)] = true
		roots = append(roots, path)
	}
	return roots
}

// registryPaths extracts folder paths from the registry node. Children
// named by a small integer index are either the path itself (legacy form)
// or a block with a "path" key (modern form); anything else is ignored.
func registryPaths(reg *keyvalue.Node) []string {
	var paths []string
	for _, child := range reg.Children {
		if _, err := strconv.Atoi(child.Name); err != nil {
			continue
		}
		if child.Value != "" {
			paths = append(paths, child.Value)
			continue
		}
		if p := child.Child("path").String(""); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func normalizePath(p string) string {
	return strings.ToLower(strings.TrimRight(p, `/\`))
}
