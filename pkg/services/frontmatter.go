package services

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = fmt.Errorf("unknown frontmatter format")

// SafeJoin joins target under root/sub, returning "" when target would escape it.
func SafeJoin(root, sub, target string) string {
	cleanTarget := filepath.Clean(target)
	if strings.Contains(cleanTarget, "..") {
		return ""
	}
	return filepath.Join(root, sub, cleanTarget)
}

// ParseFrontMatter splits a document into its frontmatter map, body and format
// (yaml for ---, toml for +++, json for a leading object).
func ParseFrontMatter(content []byte) (map[string]interface{}, string, string, error) {
	str := strings.TrimPrefix(normalizeLineEndings(string(content)), "\ufeff")

	// Check for YAML (---)
	if fmText, body, ok := splitDelimited(str, "---"); ok {
		var fm map[string]interface{}
		if err := yaml.Unmarshal([]byte(fmText), &fm); err != nil {
			return nil, "", "", fmt.Errorf("yaml frontmatter: %w", err)
		}
		return sanitizeFrontMatter(fm), body, "yaml", nil
	}
	// Check for TOML (+++)
	if fmText, body, ok := splitDelimited(str, "+++"); ok {
		var fm map[string]interface{}
		if err := toml.Unmarshal([]byte(fmText), &fm); err != nil {
			return nil, "", "", fmt.Errorf("toml frontmatter: %w", err)
		}
		return sanitizeFrontMatter(fm), body, "toml", nil
	}
	// Check for JSON ({ followed by a key or })
	if looksLikeJSONObject(str) {
		dec := json.NewDecoder(strings.NewReader(str))
		var fm map[string]interface{}
		if err := dec.Decode(&fm); err != nil {
			return nil, "", "", fmt.Errorf("json frontmatter: %w", err)
		}
		rest := str[dec.InputOffset():]
		return fm, strings.TrimSpace(rest), "json", nil
	}

	return nil, "", "", ErrUnknownFormat
}

// looksLikeJSONObject reports whether str opens with a JSON object rather
// than an MDX expression such as {/* comment */}.
func looksLikeJSONObject(str string) bool {
	rest, ok := strings.CutPrefix(strings.TrimLeft(str, " \t\n"), "{")
	if !ok {
		return false
	}
	rest = strings.TrimLeft(rest, " \t\n")
	return strings.HasPrefix(rest, `"`) || strings.HasPrefix(rest, "}")
}

// splitDelimited expects delim alone on the first line and finds the next line
// holding only delim.
func splitDelimited(str, delim string) (string, string, bool) {
	if !strings.HasPrefix(str, delim+"\n") {
		return "", "", false
	}
	rest := str[len(delim)+1:]
	if strings.HasPrefix(rest, delim+"\n") || rest == delim {
		return "", strings.TrimSpace(strings.TrimPrefix(rest, delim)), true
	}
	idx := strings.Index(rest, "\n"+delim+"\n")
	if idx < 0 {
		if strings.HasSuffix(rest, "\n"+delim) {
			return rest[:len(rest)-len(delim)-1], "", true
		}
		return "", "", false
	}
	return rest[:idx], strings.TrimSpace(rest[idx+len(delim)+2:]), true
}

func sanitizeFrontMatter(fm map[string]interface{}) map[string]interface{} {
	if fm == nil {
		return map[string]interface{}{}
	}
	sanitized := make(map[string]interface{}, len(fm))
	for k, v := range fm {
		sanitized[k] = sanitizeFrontMatterValue(v)
	}
	return sanitized
}

func sanitizeFrontMatterValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return sanitizeFrontMatter(v)
	case map[interface{}]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for key, inner := range v {
			normalized[fmt.Sprint(key)] = sanitizeFrontMatterValue(inner)
		}
		return normalized
	case []interface{}:
		slice := make([]interface{}, len(v))
		for i := range v {
			slice[i] = sanitizeFrontMatterValue(v[i])
		}
		return slice
	default:
		return v
	}
}

func normalizeLineEndings(input string) string {
	return strings.ReplaceAll(input, "\r\n", "\n")
}
