// Package seo builds robots.txt, sitemap.xml and the site icon.
package seo

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"youbuildit/pkg/models"
)

const RobotsCacheControl = "public, max-age=86400"

// Robots returns the crawl rules; only baseURL varies between calls.
func Robots(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	return "User-agent: *\n" +
		"Allow: /\n" +
		"Disallow: /api/\n" +
		"Disallow: /dashboard\n" +
		"Disallow: /auth/\n" +
		"Disallow: /login\n" +
		"\n" +
		"Sitemap: " + baseURL + "/sitemap.xml\n"
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap lists the home page, the challenge index and every challenge.
func Sitemap(baseURL string, challenges []models.Challenge) ([]byte, error) {
	baseURL = strings.TrimRight(baseURL, "/")
	set := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: baseURL + "/", ChangeFreq: "weekly", Priority: "1.0"},
			{Loc: baseURL + "/challenges", ChangeFreq: "weekly", Priority: "0.9"},
		},
	}
	for _, c := range challenges {
		u := sitemapURL{Loc: baseURL + "/challenges/" + c.Slug, ChangeFreq: "monthly", Priority: "0.8"}
		if !c.Published.IsZero() {
			u.LastMod = c.Published.UTC().Format(time.DateOnly)
		}
		set.URLs = append(set.URLs, u)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

const IconSize = 32

// Icon draws the 32x32 favicon: the brand initials on a rounded tile.
func Icon(text, background, foreground string) string {
	if text == "" {
		text = "Y"
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		IconSize, IconSize, IconSize, IconSize)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" rx="6" fill="%s"/>`, IconSize, IconSize, xmlEscape(background))
	fontSize := 20
	if len([]rune(text)) > 1 {
		fontSize = 14
	}
	fmt.Fprintf(&b, `<text x="50%%" y="50%%" dy=".35em" text-anchor="middle" font-family="system-ui, sans-serif" font-size="%d" font-weight="700" fill="%s">%s</text>`,
		fontSize, xmlEscape(foreground), xmlEscape(text))
	b.WriteString(`</svg>`)
	return b.String()
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
