package mdx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// resolve streams rendered HTML, replacing component elements with their
// rendered output. Everything else is copied byte for byte.
func (r *Renderer) resolve(w *bytes.Buffer, src []byte, ctx *Context) error {
	z := html.NewTokenizer(bytes.NewReader(src))
	_, err := r.resolveUntil(w, z, ctx, "")
	return err
}

// resolveUntil copies tokens into w until the end tag named stop (or EOF)
// and reports whether the end tag was found.
func (r *Renderer) resolveUntil(w *bytes.Buffer, z *html.Tokenizer, ctx *Context, stop string) (bool, error) {
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return false, nil
			}
			return false, fmt.Errorf("tokenize html: %w", z.Err())
		}
		raw := append([]byte(nil), z.Raw()...)

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			comp, ok := r.components[tok.Data]
			if !ok {
				w.Write(raw)
				continue
			}
			if err := r.renderElement(w, z, ctx, tok, comp, tt == html.SelfClosingTagToken); err != nil {
				return false, err
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if stop != "" && string(name) == stop {
				return true, nil
			}
			w.Write(raw)
		default:
			w.Write(raw)
		}
	}
}

func (r *Renderer) renderElement(w *bytes.Buffer, z *html.Tokenizer, ctx *Context, tok html.Token, comp Component, selfClosing bool) error {
	props := make(Props, len(tok.Attr))
	for _, a := range tok.Attr {
		props[a.Key] = propValue(a.Val)
	}

	var children string
	switch {
	case selfClosing || comp.Void:
	case comp.Text:
		text, err := collectText(z, tok.Data)
		if err != nil {
			return err
		}
		children = text
	default:
		var inner bytes.Buffer
		if _, err := r.resolveUntil(&inner, z, ctx, tok.Data); err != nil {
			return err
		}
		children = inner.String()
	}

	if err := comp.Render(w, ctx, props, children); err != nil {
		return fmt.Errorf("render <%s>: %w", tok.Data, err)
	}
	return nil
}

// collectText gathers unescaped text up to the end tag named stop.
func collectText(z *html.Tokenizer, stop string) (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return b.String(), nil
			}
			return "", fmt.Errorf("tokenize html: %w", z.Err())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == stop {
				depth++
			}
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case stop:
				if depth == 0 {
					return b.String(), nil
				}
				depth--
			case "p":
				b.WriteByte('\n')
			}
		}
	}
}

// propValue unwraps JSX expression values such as {400} or {"text"}.
func propValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '{' && v[len(v)-1] == '}' {
		v = strings.TrimSpace(v[1 : len(v)-1])
		if len(v) >= 2 {
			switch q := v[0]; q {
			case '"', '\'', '`':
				if v[len(v)-1] == q {
					v = v[1 : len(v)-1]
				}
			}
		}
	}
	return v
}
