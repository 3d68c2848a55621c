package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"youbuildit/pkg/models"

	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("challenge not found")

var documentExts = []string{".mdx", ".md"}

// Library loads challenge documents from <root>/challenges and caches them
// until Invalidate is called.
type Library struct {
	root        string
	concurrency int
	showDrafts  bool

	mu     sync.Mutex
	cache  []models.Challenge
	loaded bool
}

func NewLibrary(root string, concurrency int, showDrafts bool) *Library {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Library{root: root, concurrency: concurrency, showDrafts: showDrafts}
}

// Root is the content repository directory.
func (l *Library) Root() string { return l.root }

func (l *Library) challengesDir() string {
	return filepath.Join(l.root, "challenges")
}

// All returns every visible challenge sorted by order, then title.
func (l *Library) All(ctx context.Context) ([]models.Challenge, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		return l.cache, nil
	}

	challenges, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	l.cache = challenges
	l.loaded = true
	return l.cache, nil
}

func (l *Library) BySlug(ctx context.Context, slug string) (models.Challenge, error) {
	all, err := l.All(ctx)
	if err != nil {
		return models.Challenge{}, err
	}
	for _, c := range all {
		if c.Slug == slug {
			return c, nil
		}
	}
	return models.Challenge{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
}

func (l *Library) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
	l.cache = nil
}

type document struct {
	path string // absolute
	slug string
	dir  string
}

func (l *Library) load(ctx context.Context) ([]models.Challenge, error) {
	dir := l.challengesDir()
	docs, err := findDocuments(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	parsed := make([]models.Challenge, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := readChallenge(dir, doc)
			if err != nil {
				return err
			}
			parsed[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(parsed))
	challenges := make([]models.Challenge, 0, len(parsed))
	for _, c := range parsed {
		if prev, dup := seen[c.Slug]; dup {
			return nil, fmt.Errorf("duplicate challenge slug %q in %s and %s", c.Slug, prev, c.Path)
		}
		seen[c.Slug] = c.Path
		if c.Draft && !l.showDrafts {
			continue
		}
		challenges = append(challenges, c)
	}

	sort.SliceStable(challenges, func(i, j int) bool {
		if challenges[i].Order != challenges[j].Order {
			return challenges[i].Order < challenges[j].Order
		}
		return strings.ToLower(challenges[i].Title) < strings.ToLower(challenges[j].Title)
	})
	return challenges, nil
}

// findDocuments accepts <slug>.mdx at the top level and <slug>/index.mdx one
// level down.
func findDocuments(dir string) ([]document, error) {
	var docs []document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		depth := strings.Count(filepath.ToSlash(rel), "/")
		if d.IsDir() {
			if path != dir && (depth > 0 || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if !isDocumentExt(ext) {
			return nil
		}
		switch depth {
		case 0:
			docs = append(docs, document{
				path: path,
				slug: strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
				dir:  dir,
			})
		case 1:
			if strings.TrimSuffix(strings.ToLower(d.Name()), ext) != "index" {
				return nil
			}
			parent := filepath.Dir(path)
			docs = append(docs, document{path: path, slug: filepath.Base(parent), dir: parent})
		}
		return nil
	})
	return docs, err
}

func isDocumentExt(ext string) bool {
	for _, e := range documentExts {
		if ext == e {
			return true
		}
	}
	return false
}

func readChallenge(root string, doc document) (models.Challenge, error) {
	content, err := os.ReadFile(doc.path)
	if err != nil {
		return models.Challenge{}, err
	}
	relPath, _ := filepath.Rel(root, doc.path)
	relPath = filepath.ToSlash(relPath)

	fm, body, format, err := ParseFrontMatter(content)
	if errors.Is(err, ErrUnknownFormat) {
		// No frontmatter: the whole file is the body.
		fm, body, format, err = map[string]interface{}{}, strings.TrimSpace(string(content)), "", nil
	}
	if err != nil {
		return models.Challenge{}, fmt.Errorf("%s: %w", relPath, err)
	}

	c := challengeFromFrontMatter(fm)
	if c.Slug == "" {
		c.Slug = doc.slug
	}
	if c.Title == "" {
		c.Title = c.Slug
	}
	c.Body = body
	c.Format = format
	c.Path = relPath
	c.Dir = doc.dir
	return c, nil
}

var knownFields = map[string]bool{
	"slug": true, "title": true, "summary": true, "difficulty": true, "category": true,
	"skills": true, "estimatedTime": true, "draft": true, "order": true, "published": true,
}

func challengeFromFrontMatter(fm map[string]interface{}) models.Challenge {
	c := models.Challenge{
		Slug:          stringField(fm["slug"]),
		Title:         stringField(fm["title"]),
		Summary:       stringField(fm["summary"]),
		Difficulty:    stringField(fm["difficulty"]),
		Category:      stringField(fm["category"]),
		Skills:        stringList(fm["skills"]),
		EstimatedTime: stringField(fm["estimatedTime"]),
		Draft:         boolField(fm["draft"]),
		Order:         intField(fm["order"]),
		Published:     timeField(fm["published"]),
	}
	for k, v := range fm {
		if knownFields[k] {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]interface{})
		}
		c.Extra[k] = v
	}
	return c
}

func stringField(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func stringList(v interface{}) []string {
	switch list := v.(type) {
	case nil:
		return []string{}
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := stringField(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return append([]string{}, list...)
	default:
		if s := stringField(list); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

func boolField(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	}
	return false
}

func intField(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func timeField(v interface{}) time.Time {
	switch t := v.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return t
	case string:
		return parseDate(t)
	case fmt.Stringer:
		return parseDate(t.String())
	}
	return time.Time{}
}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return t
		}
	}
	return time.Time{}
}
