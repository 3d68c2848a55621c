package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  string
		title   string
		body    string
	}{
		{"yaml", "---\ntitle: Build Redis\n---\n\n# Hello\n", "yaml", "Build Redis", "# Hello"},
		{"yaml crlf", "---\r\ntitle: Build Redis\r\n---\r\nBody\r\n", "yaml", "Build Redis", "Body"},
		{"yaml bom", "\ufeff---\ntitle: Build Redis\n---\nBody", "yaml", "Build Redis", "Body"},
		{"toml", "+++\ntitle = \"Build Git\"\n+++\nBody\n", "toml", "Build Git", "Body"},
		{"json", "{\"title\": \"Build a Shell\"}\nBody\n", "json", "Build a Shell", "Body"},
		{"empty json", "{}\nBody", "json", "", "Body"},
		{"empty yaml", "---\n---\nBody", "yaml", "", "Body"},
		{"yaml at eof", "---\ntitle: Only Header\n---", "yaml", "Only Header", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, format, err := ParseFrontMatter([]byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.body, body)
			if tt.title == "" {
				assert.NotContains(t, fm, "title")
			} else {
				assert.Equal(t, tt.title, fm["title"])
			}
		})
	}
}

func TestParseFrontMatterErrors(t *testing.T) {
	_, _, _, err := ParseFrontMatter([]byte("# Just markdown\n"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, _, _, err = ParseFrontMatter([]byte("{/* note */}\n# Body\n"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, _, _, err = ParseFrontMatter([]byte("{props.title}\n"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, _, _, err = ParseFrontMatter([]byte("{\"title\": \"x\",}\nBody"))
	assert.ErrorContains(t, err, "json frontmatter")

	_, _, _, err = ParseFrontMatter([]byte("---\ntitle: [oops\n---\nBody"))
	assert.ErrorContains(t, err, "yaml frontmatter")

	_, _, _, err = ParseFrontMatter([]byte("+++\ntitle = \n+++\nBody"))
	assert.ErrorContains(t, err, "toml frontmatter")
}

func TestParseFrontMatterNestedMaps(t *testing.T) {
	fm, _, _, err := ParseFrontMatter([]byte("---\nauthor:\n  name: Ada\n  links: [a, b]\n---\n"))
	require.NoError(t, err)
	author, ok := fm["author"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Ada", author["name"])
	assert.Equal(t, []interface{}{"a", "b"}, author["links"])
}

func TestSafeJoin(t *testing.T) {
	assert.Equal(t, "/content/challenges/x/img/a.png", SafeJoin("/content/challenges/x", "", "img/a.png"))
	assert.Equal(t, "/content/challenges/x/a.png", SafeJoin("/content/challenges/x", "", "/a.png"))
	assert.Empty(t, SafeJoin("/content/challenges/x", "", "../y/index.mdx"))
	assert.Empty(t, SafeJoin("/content/challenges/x", "", "img/../../secret"))
}
