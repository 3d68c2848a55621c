package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestLibrary(t *testing.T, showDrafts bool) (*Library, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "challenges")
	writeFile(t, filepath.Join(dir, "redis.md"), "---\ntitle: Build Redis\norder: 2\nskills: networking\nestimatedTime: 4\n---\nRESP.\n")
	writeFile(t, filepath.Join(dir, "git", "index.mdx"), "+++\ntitle = \"Build Git\"\norder = 1\nskills = [\"hashing\", \"trees\"]\npublished = 2025-01-15\n+++\nObjects.\n")
	writeFile(t, filepath.Join(dir, "git", "objects.png"), "png")
	writeFile(t, filepath.Join(dir, "awk.md"), "{\"title\": \"build awk\", \"order\": 2, \"author\": \"ada\"}\nFields.\n")
	writeFile(t, filepath.Join(dir, "shell.md"), "---\ntitle: Build a Shell\ndraft: true\n---\nSoon.\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a challenge")
	writeFile(t, filepath.Join(dir, ".hidden", "index.md"), "---\ntitle: Hidden\n---\n")
	writeFile(t, filepath.Join(dir, "git", "extra", "index.md"), "---\ntitle: Too deep\n---\n")
	return NewLibrary(root, 2, showDrafts), root
}

func slugs(t *testing.T, lib *Library) []string {
	t.Helper()
	all, err := lib.All(context.Background())
	require.NoError(t, err)
	out := make([]string, len(all))
	for i, c := range all {
		out[i] = c.Slug
	}
	return out
}

func TestLibraryAll(t *testing.T) {
	lib, _ := newTestLibrary(t, false)

	all, err := lib.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, []string{"git", "awk", "redis"}, slugs(t, lib))

	git := all[0]
	assert.Equal(t, "Build Git", git.Title)
	assert.Equal(t, []string{"hashing", "trees"}, git.Skills)
	assert.Equal(t, "toml", git.Format)
	assert.Equal(t, "git/index.mdx", git.Path)
	assert.Equal(t, "Objects.", git.Body)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), git.Published.UTC())

	awk := all[1]
	assert.Equal(t, "json", awk.Format)
	assert.Equal(t, map[string]interface{}{"author": "ada"}, awk.Extra)

	redis := all[2]
	assert.Equal(t, []string{"networking"}, redis.Skills)
	assert.Equal(t, "4", redis.EstimatedTime)
}

func TestLibraryDrafts(t *testing.T) {
	lib, _ := newTestLibrary(t, true)
	assert.Contains(t, slugs(t, lib), "shell")

	lib, _ = newTestLibrary(t, false)
	_, err := lib.BySlug(context.Background(), "shell")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibraryBySlug(t *testing.T) {
	lib, _ := newTestLibrary(t, false)

	c, err := lib.BySlug(context.Background(), "redis")
	require.NoError(t, err)
	assert.Equal(t, "Build Redis", c.Title)

	_, err = lib.BySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLibraryExplicitSlug(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "challenges", "01-intro.md"), "---\nslug: intro\n---\n")

	lib := NewLibrary(root, 1, false)
	c, err := lib.BySlug(context.Background(), "intro")
	require.NoError(t, err)
	assert.Equal(t, "intro", c.Title)
}

func TestLibraryWithoutFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "challenges", "plain.md"), "# Plain\n")

	c, err := NewLibrary(root, 1, false).BySlug(context.Background(), "plain")
	require.NoError(t, err)
	assert.Equal(t, "# Plain", c.Body)
	assert.Empty(t, c.Skills)
}

func TestLibraryMDXCommentIsNotFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "challenges", "wc.mdx"), "{/* draft notes */}\n\n# Build wc\n")
	writeFile(t, filepath.Join(root, "challenges", "grep.md"), "---\ntitle: Build grep\n---\n")

	lib := NewLibrary(root, 2, false)
	assert.Equal(t, []string{"grep", "wc"}, slugs(t, lib))

	wc, err := lib.BySlug(context.Background(), "wc")
	require.NoError(t, err)
	assert.Equal(t, "{/* draft notes */}\n\n# Build wc", wc.Body)
	assert.Equal(t, "wc", wc.Title)
}

func TestLibraryCachesUntilInvalidated(t *testing.T) {
	lib, root := newTestLibrary(t, false)
	require.Len(t, slugs(t, lib), 3)

	writeFile(t, filepath.Join(root, "challenges", "sed.md"), "---\ntitle: Build sed\norder: 9\n---\n")
	assert.Len(t, slugs(t, lib), 3)

	lib.Invalidate()
	assert.Equal(t, "sed", slugs(t, lib)[3])
}

func TestLibraryRejectsDuplicateSlugs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "challenges", "git.md"), "---\ntitle: One\n---\n")
	writeFile(t, filepath.Join(root, "challenges", "git", "index.md"), "---\ntitle: Two\n---\n")

	_, err := NewLibrary(root, 4, false).All(context.Background())
	assert.ErrorContains(t, err, `duplicate challenge slug "git"`)
}

func TestLibraryReportsBrokenFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "challenges", "ok.md"), "---\ntitle: Fine\n---\n")
	writeFile(t, filepath.Join(root, "challenges", "bad.md"), "---\ntitle: [oops\n---\n")

	lib := NewLibrary(root, 4, false)
	_, err := lib.All(context.Background())
	assert.ErrorContains(t, err, "bad.md")

	// Errors are not cached.
	writeFile(t, filepath.Join(root, "challenges", "bad.md"), "---\ntitle: Fixed\n---\n")
	assert.Len(t, slugs(t, lib), 2)
}

func TestLibraryMissingDirectory(t *testing.T) {
	_, err := NewLibrary(t.TempDir(), 1, false).All(context.Background())
	assert.Error(t, err)
}

func TestLibraryCancelled(t *testing.T) {
	lib, _ := newTestLibrary(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := lib.All(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
