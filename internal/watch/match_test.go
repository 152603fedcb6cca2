package watch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orchestra-dev/podium/pkg/domain"
)

func TestMatchesPatterns(t *testing.T) {
	spec := domain.WatchSpec{
		Dir:      "src",
		Patterns: []string{"**/*.go", "assets/*.css"},
	}

	assert.True(t, Matches(spec, filepath.Join("src", "main.go")))
	assert.True(t, Matches(spec, filepath.Join("src", "deep", "nested", "pkg.go")))
	assert.True(t, Matches(spec, filepath.Join("src", "assets", "site.css")))
	assert.False(t, Matches(spec, filepath.Join("src", "assets", "deep", "site.css")))
	assert.False(t, Matches(spec, filepath.Join("src", "README.md")))
}

func TestMatchesExtensionsFallback(t *testing.T) {
	spec := domain.WatchSpec{
		Dir:        "src",
		Extensions: []string{".go", "md"}, // bare extension gets the dot
	}

	assert.True(t, Matches(spec, filepath.Join("src", "main.go")))
	assert.True(t, Matches(spec, filepath.Join("src", "docs", "guide.md")))
	assert.False(t, Matches(spec, filepath.Join("src", "style.css")))
}

func TestMatchesEverythingWhenUnfiltered(t *testing.T) {
	spec := domain.WatchSpec{Dir: "src"}
	assert.True(t, Matches(spec, filepath.Join("src", "anything.xyz")))
}

func TestMatchesIgnoredDirectories(t *testing.T) {
	spec := domain.WatchSpec{
		Dir:        "src",
		Patterns:   []string{"**/*.go"},
		IgnoreDirs: []string{".git", "node_modules"},
	}

	assert.False(t, Matches(spec, filepath.Join("src", ".git", "hooks", "x.go")))
	assert.False(t, Matches(spec, filepath.Join("src", "web", "node_modules", "m.go")))
	assert.True(t, Matches(spec, filepath.Join("src", "web", "handler.go")))
}

func TestMatchesUnrelatablePathFallsBackToBasename(t *testing.T) {
	// A path that cannot be made relative (absolute vs relative dir) is
	// matched by its basename; the filters still apply.
	spec := domain.WatchSpec{Dir: "src", Patterns: []string{"*.go"}}
	assert.True(t, Matches(spec, string(filepath.Separator)+filepath.Join("abs", "main.go")))
	assert.False(t, Matches(spec, string(filepath.Separator)+filepath.Join("abs", "main.css")))
}
