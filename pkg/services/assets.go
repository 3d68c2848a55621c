package services

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"youbuildit/pkg/models"
)

type AssetFile struct {
	Name string `json:"name"`
	Path string `json:"path"` // Relative path for usage in MDX
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// AssetBase is the URL prefix relative asset references resolve against.
func AssetBase(slug string) string {
	return "/challenges/" + slug + "/assets/"
}

// hasAssetDir reports whether the challenge lives in its own directory.
func (l *Library) hasAssetDir(c models.Challenge) bool {
	return c.Dir != "" && filepath.Clean(c.Dir) != filepath.Clean(l.challengesDir())
}

// ListAssets returns the non-document files stored beside a challenge.
func (l *Library) ListAssets(c models.Challenge) ([]AssetFile, error) {
	files := []AssetFile{}
	if !l.hasAssetDir(c) {
		return files, nil
	}

	err := filepath.WalkDir(c.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != c.Dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || isDocumentExt(strings.ToLower(filepath.Ext(d.Name()))) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(c.Dir, p)
		rel = filepath.ToSlash(rel)
		files = append(files, AssetFile{
			Name: d.Name(),
			Path: rel,
			Size: info.Size(),
			URL:  path.Join(AssetBase(c.Slug), rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// AssetPath resolves a request path to a file on disk, or "" when it is not
// a servable asset of the challenge.
func (l *Library) AssetPath(c models.Challenge, target string) string {
	if !l.hasAssetDir(c) {
		return ""
	}
	target = strings.TrimPrefix(target, "/")
	if target == "" || isDocumentExt(strings.ToLower(filepath.Ext(target))) {
		return ""
	}
	for _, part := range strings.Split(filepath.ToSlash(target), "/") {
		if strings.HasPrefix(part, ".") {
			return ""
		}
	}
	return SafeJoin(c.Dir, "", target)
}
