// Package auth tracks who is signed in and decides what auth-gated content
// a visitor sees.
package auth

import (
	"html/template"

	"youbuildit/pkg/models"
)

// Status is the identity state of a request. The zero value is "loading":
// the provider has not answered yet.
type Status struct {
	Loaded   bool
	SignedIn bool
	User     *models.User
}

var Loading = Status{}

func SignedOut() Status { return Status{Loaded: true} }

func SignedInAs(u *models.User) Status {
	return Status{Loaded: true, SignedIn: true, User: u}
}

type Gate int

const (
	// GateSignedIn shows its children only to signed-in visitors.
	GateSignedIn Gate = iota
	// GateSignedOut shows its children only to signed-out visitors.
	GateSignedOut
)

// Visible reports whether a gate shows its children. While loading neither
// gate does.
func Visible(g Gate, s Status) bool {
	if !s.Loaded {
		return false
	}
	if g == GateSignedIn {
		return s.SignedIn
	}
	return !s.SignedIn
}

// Render picks children or fallback; an empty fallback renders nothing.
func Render(g Gate, s Status, children, fallback template.HTML) template.HTML {
	if Visible(g, s) {
		return children
	}
	return fallback
}

// TemplateFuncs exposes the gates to html/template:
// {{if signedIn .Auth}}...{{else}}fallback{{end}}.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"signedIn":  func(s Status) bool { return Visible(GateSignedIn, s) },
		"signedOut": func(s Status) bool { return Visible(GateSignedOut, s) },
	}
}
