package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern string
		relPath string
		want    bool
	}{
		{"**/*.py", "main.py", true},
		{"**/*.py", "pkg/sub/mod.py", true},
		{"**/*.py", "pkg/mod.go", false},
		{"*.py", "main.py", true},
		{"*.py", "pkg/mod.py", false},
		{"", "anything.txt", true},
		{"**/*.go", "internal/store/store.go", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchPattern(tt.pattern, tt.relPath),
			"pattern %q path %q", tt.pattern, tt.relPath)
	}
}

func TestWalkMatchesPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "print('a')\n")
	writeFile(t, filepath.Join(dir, "sub", "b.py"), "print('b')\n")
	writeFile(t, filepath.Join(dir, "c.go"), "package c\n")

	files, err := Walk(dir, "**/*.py")
	require.NoError(t, err)
	require.Len(t, files, 2)

	var rels []string
	for _, f := range files {
		rels = append(rels, f.RelPath)
	}
	assert.ElementsMatch(t, []string{"a.py", "sub/b.py"}, rels)
}

func TestWalkSkipsIgnoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.py"), "print('keep')\n")
	writeFile(t, filepath.Join(dir, "node_modules", "skip.py"), "print('skip')\n")
	writeFile(t, filepath.Join(dir, "__pycache__", "skip2.py"), "print('skip')\n")

	files, err := Walk(dir, "**/*.py")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "keep.py", files[0].RelPath)
}

func TestWalkSkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "empty.py"), "")
	writeFile(t, filepath.Join(dir, "full.py"), "x = 1\n")

	files, err := Walk(dir, "**/*.py")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "full.py", files[0].RelPath)
}

func TestWalkHonorsIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".logagentignore"), "generated\n")
	writeFile(t, filepath.Join(dir, "generated", "gen.py"), "print('gen')\n")
	writeFile(t, filepath.Join(dir, "src.py"), "print('src')\n")

	files, err := Walk(dir, "**/*.py")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "src.py", files[0].RelPath)
}
