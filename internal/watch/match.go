package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/orchestra-dev/podium/pkg/domain"
)

// Matches reports whether the changed path counts for the spec. Patterns
// are doublestar globs against the path relative to the watched directory;
// when no patterns are configured the extension list is the filter, and an
// empty spec matches every file.
func Matches(spec domain.WatchSpec, path string) bool {
	rel, err := filepath.Rel(spec.Dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = filepath.ToSlash(rel)

	for _, seg := range strings.Split(rel, "/") {
		if ignored(spec, seg) {
			return false
		}
	}

	if len(spec.Patterns) > 0 {
		for _, pattern := range spec.Patterns {
			if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
				return true
			}
		}
		return false
	}

	if len(spec.Extensions) > 0 {
		ext := filepath.Ext(path)
		for _, want := range spec.Extensions {
			if !strings.HasPrefix(want, ".") {
				want = "." + want
			}
			if ext == want {
				return true
			}
		}
		return false
	}

	return true
}

func ignored(spec domain.WatchSpec, name string) bool {
	for _, dir := range spec.IgnoreDirs {
		if name == dir {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// addRecursive registers the spec directory and every non-ignored
// subdirectory with the watcher.
func addRecursive(w *fsnotify.Watcher, spec domain.WatchSpec) error {
	return filepath.WalkDir(spec.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != spec.Dir && ignored(spec, d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
