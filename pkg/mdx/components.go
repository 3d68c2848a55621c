package mdx

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Props are a tag's attributes, keyed by lower-cased name.
type Props map[string]string

func (p Props) Get(name string) string {
	return p[strings.ToLower(name)]
}

// Context carries per-document values the components need.
type Context struct {
	// AssetBase prefixes relative Image sources, e.g. /challenges/foo/assets/.
	AssetBase string
	// SiteHost is the host links are considered internal to.
	SiteHost string

	plantUMLServer string
}

// RenderFunc writes the HTML for one component. children is resolved HTML,
// or plain text for components with Text set.
type RenderFunc func(w io.Writer, ctx *Context, props Props, children string) error

// Component describes how a tag is resolved.
type Component struct {
	Render RenderFunc
	// Void components never take children, even without a self-closing slash.
	Void bool
	// Text components receive their unescaped text content instead of HTML.
	Text bool
	// Block components written on their own lines get markdown children.
	Block bool
}

// DefaultComponents is the tag table used for challenge documents.
func DefaultComponents() map[string]Component {
	return map[string]Component{
		"Image":        {Render: renderImage, Void: true},
		"a":            {Render: renderAnchor},
		"Alert":        {Render: renderAlert, Block: true},
		"LinkPreview":  {Render: renderLinkPreview, Block: true},
		"plantuml":     {Render: renderPlantUML, Text: true},
		"YouTubeEmbed": {Render: renderYouTube, Void: true},
	}
}

func esc(s string) string { return html.EscapeString(s) }

func renderImage(w io.Writer, ctx *Context, p Props, _ string) error {
	src := ctx.resolveAsset(p.Get("src"))
	if src == "" {
		return nil
	}
	var b strings.Builder
	b.WriteString(`<figure class="mdx-image">`)
	fmt.Fprintf(&b, `<img src="%s" alt="%s"`, esc(src), esc(p.Get("alt")))
	for _, dim := range []string{"width", "height"} {
		if n, err := strconv.Atoi(p.Get(dim)); err == nil && n > 0 {
			fmt.Fprintf(&b, ` %s="%d"`, dim, n)
		}
	}
	b.WriteString(` loading="lazy" decoding="async">`)
	if caption := p.Get("caption"); caption != "" {
		fmt.Fprintf(&b, `<figcaption>%s</figcaption>`, esc(caption))
	}
	b.WriteString(`</figure>`)
	_, err := io.WriteString(w, b.String())
	return err
}

func (ctx *Context) resolveAsset(src string) string {
	if src == "" {
		return ""
	}
	if strings.HasPrefix(src, "/") || strings.HasPrefix(src, "data:") || strings.HasPrefix(src, "//") {
		return src
	}
	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		return src
	}
	if ctx.AssetBase == "" {
		return src
	}
	return strings.TrimSuffix(ctx.AssetBase, "/") + "/" + strings.TrimPrefix(src, "./")
}

// isExternal reports whether href leaves the site.
func (ctx *Context) isExternal(href string) bool {
	u, err := url.Parse(href)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return !strings.EqualFold(u.Host, ctx.SiteHost)
}

// anchorAttrs are copied from <a> tags as written; aria-* and data-*
// attributes are copied too.
var anchorAttrs = []string{"id", "title", "class", "hreflang", "download"}

func renderAnchor(w io.Writer, ctx *Context, p Props, children string) error {
	var b strings.Builder
	b.WriteString("<a")
	href := p.Get("href")
	if href != "" {
		fmt.Fprintf(&b, ` href="%s"`, esc(href))
	}
	for _, attr := range anchorAttrs {
		if v := p.Get(attr); v != "" {
			fmt.Fprintf(&b, ` %s="%s"`, attr, esc(v))
		}
	}
	var extra []string
	for k := range p {
		if strings.HasPrefix(k, "aria-") || strings.HasPrefix(k, "data-") {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		fmt.Fprintf(&b, ` %s="%s"`, k, esc(p[k]))
	}

	rel := strings.Fields(p.Get("rel"))
	if ctx.isExternal(href) {
		b.WriteString(` target="_blank"`)
		rel = appendMissing(rel, "noopener", "noreferrer")
	} else if target := p.Get("target"); target != "" {
		fmt.Fprintf(&b, ` target="%s"`, esc(target))
	}
	if len(rel) > 0 {
		fmt.Fprintf(&b, ` rel="%s"`, esc(strings.Join(rel, " ")))
	}
	b.WriteString(">")
	b.WriteString(children)
	b.WriteString("</a>")
	_, err := io.WriteString(w, b.String())
	return err
}

func appendMissing(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, have := range list {
			if strings.EqualFold(have, v) {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}

var alertTypes = map[string]bool{"info": true, "warning": true, "error": true, "success": true}

func renderAlert(w io.Writer, _ *Context, p Props, children string) error {
	kind := strings.ToLower(p.Get("type"))
	if !alertTypes[kind] {
		kind = "info"
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="alert alert-%s" role="alert">`, kind)
	if title := p.Get("title"); title != "" {
		fmt.Fprintf(&b, `<p class="alert-title">%s</p>`, esc(title))
	}
	b.WriteString(strings.TrimSpace(children))
	b.WriteString(`</div>`)
	_, err := io.WriteString(w, b.String())
	return err
}

func renderLinkPreview(w io.Writer, _ *Context, p Props, children string) error {
	href := p.Get("url")
	if href == "" {
		href = p.Get("href")
	}
	u, err := url.Parse(href)
	if href == "" || err != nil {
		return nil
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	title := p.Get("title")
	if title == "" {
		title = host
	}
	if title == "" {
		title = href
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<a class="link-preview" href="%s" target="_blank" rel="noopener noreferrer">`, esc(href))
	fmt.Fprintf(&b, `<span class="link-preview-title">%s</span>`, esc(title))
	if desc := p.Get("description"); desc != "" {
		fmt.Fprintf(&b, `<span class="link-preview-description">%s</span>`, esc(desc))
	} else if c := strings.TrimSpace(children); c != "" {
		fmt.Fprintf(&b, `<span class="link-preview-description">%s</span>`, c)
	}
	if host != "" {
		fmt.Fprintf(&b, `<span class="link-preview-host">%s</span>`, esc(host))
	}
	b.WriteString(`</a>`)
	_, err = io.WriteString(w, b.String())
	return err
}

func renderPlantUML(w io.Writer, ctx *Context, p Props, children string) error {
	source := strings.TrimSpace(children)
	source = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(source, "{`"), "`}"))
	if source == "" {
		return nil
	}
	alt := p.Get("alt")
	if alt == "" {
		alt = "PlantUML diagram"
	}
	return writePlantUML(w, ctx.plantUMLServer, source, alt)
}

var youTubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// YouTubeID extracts the video id from an id or a watch, embed, shorts or
// youtu.be URL.
func YouTubeID(ref string) string {
	ref = strings.TrimSpace(ref)
	if youTubeID.MatchString(ref) {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	var id string
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case strings.HasSuffix(host, "youtube.com") || strings.HasSuffix(host, "youtube-nocookie.com"):
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "embed" || parts[0] == "shorts" || parts[0] == "live") {
			id = parts[1]
		}
	}
	if !youTubeID.MatchString(id) {
		return ""
	}
	return id
}

func renderYouTube(w io.Writer, _ *Context, p Props, _ string) error {
	ref := p.Get("id")
	if ref == "" {
		ref = p.Get("videoid")
	}
	if ref == "" {
		ref = p.Get("url")
	}
	id := YouTubeID(ref)
	if id == "" {
		return nil
	}
	src := "https://www.youtube-nocookie.com/embed/" + id
	if start, err := strconv.Atoi(p.Get("start")); err == nil && start > 0 {
		src += "?start=" + strconv.Itoa(start)
	}
	title := p.Get("title")
	if title == "" {
		title = "YouTube video"
	}
	_, err := fmt.Fprintf(w, `<div class="youtube-embed"><iframe src="%s" title="%s" loading="lazy" `+
		`allow="accelerometer; autoplay; clipboard-write; encrypted-media; gyroscope; picture-in-picture" `+
		`allowfullscreen></iframe></div>`, esc(src), esc(title))
	return err
}
