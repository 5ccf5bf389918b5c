package models

import "fmt"

// ActiveView is the closed set of views the client can show.
type ActiveView string

const (
	ViewLogin     ActiveView = "login"
	ViewSearch    ActiveView = "search"
	ViewUpload    ActiveView = "upload"
	ViewDocuments ActiveView = "documents"
	ViewStats     ActiveView = "stats"
	ViewProfile   ActiveView = "profile"
)

// AuthenticatedViews are the tabs available once logged in, in navigation order.
var AuthenticatedViews = []ActiveView{ViewSearch, ViewUpload, ViewDocuments, ViewStats, ViewProfile}

// DefaultView is shown after login when no tab was requested.
const DefaultView = ViewSearch

// ParseView returns the view named by s.
func ParseView(s string) (ActiveView, error) {
	v := ActiveView(s)
	if v == ViewLogin || v.Authenticated() {
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Authenticated reports whether v is one of the tabs that require a session.
func (v ActiveView) Authenticated() bool {
	switch v {
	case ViewSearch, ViewUpload, ViewDocuments, ViewStats, ViewProfile:
		return true
	default:
		return false
	}
}
