// Package navigation decides which view is active.
package navigation

import (
	"fmt"
	"sync"

	"github.com/hyperjump/findly/internal/models"
)

// ResolveView returns the view to show. An absent session always resolves to the login view;
// otherwise the requested tab wins, falling back to the default tab.
func ResolveView(session models.Session, requested models.ActiveView) models.ActiveView {
	if !session.Present() {
		return models.ViewLogin
	}
	if requested.Authenticated() {
		return requested
	}
	return models.DefaultView
}

// Navigator remembers the tab the user last asked for.
type Navigator struct {
	mu        sync.RWMutex
	requested models.ActiveView
}

// New returns a navigator with no explicit request.
func New() *Navigator {
	return &Navigator{}
}

// Select records tab as the requested view. Only authenticated tabs can be selected; the login
// view is reached through the session, not through navigation.
func (n *Navigator) Select(tab models.ActiveView) error {
	if !tab.Authenticated() {
		return fmt.Errorf("navigation: %q is not a selectable tab", tab)
	}
	n.mu.Lock()
	n.requested = tab
	n.mu.Unlock()
	return nil
}

// Reset forgets the requested tab.
func (n *Navigator) Reset() {
	n.mu.Lock()
	n.requested = ""
	n.mu.Unlock()
}

// Requested returns the last selected tab, or "" when none.
func (n *Navigator) Requested() models.ActiveView {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.requested
}

// Current resolves the active view for session.
func (n *Navigator) Current(session models.Session) models.ActiveView {
	return ResolveView(session, n.Requested())
}
