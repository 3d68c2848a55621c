package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAssets(t *testing.T) {
	lib, root := newTestLibrary(t, false)
	dir := filepath.Join(root, "challenges", "git")
	writeFile(t, filepath.Join(dir, "img", "tree.svg"), "<svg/>")
	writeFile(t, filepath.Join(dir, ".DS_Store"), "x")
	writeFile(t, filepath.Join(dir, ".cache", "a.png"), "x")

	git, err := lib.BySlug(context.Background(), "git")
	require.NoError(t, err)
	files, err := lib.ListAssets(git)
	require.NoError(t, err)

	assert.Equal(t, []AssetFile{
		{Name: "tree.svg", Path: "img/tree.svg", Size: 6, URL: "/challenges/git/assets/img/tree.svg"},
		{Name: "objects.png", Path: "objects.png", Size: 3, URL: "/challenges/git/assets/objects.png"},
	}, files)

	redis, err := lib.BySlug(context.Background(), "redis")
	require.NoError(t, err)
	files, err = lib.ListAssets(redis)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NotNil(t, files)
}

func TestAssetPath(t *testing.T) {
	lib, root := newTestLibrary(t, false)
	git, err := lib.BySlug(context.Background(), "git")
	require.NoError(t, err)
	dir := filepath.Join(root, "challenges", "git")

	assert.Equal(t, filepath.Join(dir, "objects.png"), lib.AssetPath(git, "/objects.png"))
	assert.Empty(t, lib.AssetPath(git, "/"))
	assert.Empty(t, lib.AssetPath(git, "/index.mdx"))
	assert.Empty(t, lib.AssetPath(git, "/../redis.md"))
	assert.Empty(t, lib.AssetPath(git, "/.git/config"))

	redis, err := lib.BySlug(context.Background(), "redis")
	require.NoError(t, err)
	assert.Empty(t, lib.AssetPath(redis, "/notes.txt"))
}

func TestAssetBase(t *testing.T) {
	assert.Equal(t, "/challenges/git/assets/", AssetBase("git"))
}
