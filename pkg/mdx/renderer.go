// Package mdx renders challenge documents: markdown with embedded component
// tags resolved through a static table.
package mdx

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"
)

const DefaultPlantUMLServer = "https://www.plantuml.com/plantuml"

type Renderer struct {
	md             goldmark.Markdown
	components     map[string]Component
	plantUMLServer string
}

type Option func(*Renderer)

// WithComponents replaces the tag table.
func WithComponents(components map[string]Component) Option {
	return func(r *Renderer) {
		r.components = make(map[string]Component, len(components))
		for name, c := range components {
			r.components[strings.ToLower(name)] = c
		}
	}
}

func WithPlantUMLServer(server string) Option {
	return func(r *Renderer) {
		if server != "" {
			r.plantUMLServer = strings.TrimRight(server, "/")
		}
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{plantUMLServer: DefaultPlantUMLServer}
	WithComponents(DefaultComponents())(r)
	for _, opt := range opts {
		opt(r)
	}
	text := make(map[string]bool)
	for name, c := range r.components {
		if c.Text {
			text[name] = true
		}
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&fenceRenderer{server: r.plantUMLServer, text: text}, 100)),
		),
	)
	return r
}

// Render converts an MDX body to HTML.
func (r *Renderer) Render(source []byte, ctx Context) (template.HTML, error) {
	ctx.plantUMLServer = r.plantUMLServer

	var md bytes.Buffer
	if err := r.md.Convert(r.separateBlocks(source), &md); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	var out bytes.Buffer
	if err := r.resolve(&out, md.Bytes(), &ctx); err != nil {
		return "", err
	}
	return template.HTML(out.String()), nil
}

var (
	openTagLine  = regexp.MustCompile(`^\s*<([A-Za-z][A-Za-z0-9-]*)(\s[^<>]*)?>\s*$`)
	closeTagLine = regexp.MustCompile(`^\s*</([A-Za-z][A-Za-z0-9-]*)\s*>\s*$`)
)

// separateBlocks puts blank lines around Block component tags that stand on
// their own line, so markdown between them is parsed as markdown rather than
// swallowed into a raw HTML block. Text components standing on their own
// lines become fenced blocks so their content reaches the component verbatim.
// MDX comments outside code are dropped.
func (r *Renderer) separateBlocks(source []byte) []byte {
	lines := strings.Split(strings.ReplaceAll(string(source), "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	var fence string
	inComment := false
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			out = append(out, line)
			continue
		}
		if !inComment && (strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")) {
			fence = trimmed[:3]
			out = append(out, line)
			continue
		}

		line, inComment = stripComments(line, inComment)
		trimmed = strings.TrimSpace(line)

		if m := openTagLine.FindStringSubmatch(line); m != nil && !strings.HasSuffix(trimmed, "/>") {
			if c, ok := r.components[strings.ToLower(m[1])]; ok {
				if c.Text {
					if end := findCloseLine(lines, i+1, m[1]); end > 0 {
						out = append(out, textFence(strings.ToLower(m[1]), m[2], lines[i+1:end])...)
						i = end
						continue
					}
				} else if c.Block {
					out = append(out, "", line, "")
					continue
				}
			}
		} else if m := closeTagLine.FindStringSubmatch(line); m != nil {
			if c, ok := r.components[strings.ToLower(m[1])]; ok && c.Block {
				out = append(out, "", line, "")
				continue
			}
		}
		out = append(out, line)
	}
	return []byte(strings.Join(out, "\n"))
}

// findCloseLine returns the index of the first line from start that holds
// only the end tag of name, or -1.
func findCloseLine(lines []string, start int, name string) int {
	for j := start; j < len(lines); j++ {
		if m := closeTagLine.FindStringSubmatch(lines[j]); m != nil && strings.EqualFold(m[1], name) {
			return j
		}
	}
	return -1
}

// textFence wraps body in a fence whose info string is the tag name followed
// by its attributes. The fence is longer than any backtick run in body.
func textFence(name, attrs string, body []string) []string {
	longest := 2
	for _, l := range body {
		t := strings.TrimSpace(l)
		if run := len(t) - len(strings.TrimLeft(t, "`")); run > longest {
			longest = run
		}
	}
	marker := strings.Repeat("`", longest+1)
	info := name
	if attrs = strings.TrimSpace(attrs); attrs != "" {
		info += " " + strings.ReplaceAll(attrs, "`", "'")
	}
	out := make([]string, 0, len(body)+4)
	out = append(out, "", marker+info)
	out = append(out, body...)
	return append(out, marker, "")
}

// stripComments removes {/* ... */} expressions from line. inComment carries
// a comment left open by an earlier line. Comments inside inline code spans
// are kept.
func stripComments(line string, inComment bool) (string, bool) {
	var b strings.Builder
	rest := line
	for {
		if inComment {
			end := strings.Index(rest, "*/}")
			if end < 0 {
				return b.String(), true
			}
			rest = rest[end+3:]
			inComment = false
			continue
		}
		start := strings.Index(rest, "{/*")
		if start < 0 {
			b.WriteString(rest)
			return b.String(), false
		}
		if strings.Count(b.String()+rest[:start], "`")%2 == 1 {
			b.WriteString(rest[:start+3])
			rest = rest[start+3:]
			continue
		}
		b.WriteString(rest[:start])
		rest = rest[start+3:]
		inComment = true
	}
}

// fenceRenderer renders fenced code blocks. Fences named after a Text
// component become that component's element with the code as its text, and
// plantuml fences become diagrams.
type fenceRenderer struct {
	server string
	text   map[string]bool
}

func (f *fenceRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, f.renderFencedCodeBlock)
}

func (f *fenceRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)
	language := strings.ToLower(string(n.Language(source)))
	if language == "puml" {
		language = "plantuml"
	}

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		code.Write(line.Value(source))
	}

	if f.text[language] {
		writeTextElement(w, language, fenceAttrs(n, source), code.Bytes())
		return ast.WalkSkipChildren, nil
	}
	if language == "plantuml" {
		if err := writePlantUML(w, f.server, strings.TrimSpace(code.String()), "PlantUML diagram"); err != nil {
			return ast.WalkStop, err
		}
		_ = w.WriteByte('\n')
		return ast.WalkSkipChildren, nil
	}

	_, _ = w.WriteString("<pre><code")
	if language != "" {
		_, _ = w.WriteString(` class="language-`)
		_, _ = w.Write(util.EscapeHTML([]byte(language)))
		_ = w.WriteByte('"')
	}
	_ = w.WriteByte('>')
	_, _ = w.Write(util.EscapeHTML(code.Bytes()))
	_, _ = w.WriteString("</code></pre>\n")
	return ast.WalkSkipChildren, nil
}

// fenceAttrs parses the attributes following the language in a fence's info
// string.
func fenceAttrs(n *ast.FencedCodeBlock, source []byte) []html.Attribute {
	if n.Info == nil {
		return nil
	}
	info := strings.TrimSpace(string(n.Info.Segment.Value(source)))
	i := strings.IndexAny(info, " \t")
	if i < 0 {
		return nil
	}
	z := html.NewTokenizer(strings.NewReader("<x " + info[i+1:] + ">"))
	if z.Next() != html.StartTagToken {
		return nil
	}
	return z.Token().Attr
}

func writeTextElement(w util.BufWriter, name string, attrs []html.Attribute, text []byte) {
	_, _ = w.WriteString("<" + name)
	for _, a := range attrs {
		fmt.Fprintf(w, ` %s="%s"`, a.Key, html.EscapeString(a.Val))
	}
	_ = w.WriteByte('>')
	_, _ = w.Write(util.EscapeHTML(text))
	_, _ = w.WriteString("</" + name + ">\n")
}
