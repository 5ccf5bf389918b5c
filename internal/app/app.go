// Package app is the root controller. It owns the application state, restores it from the
// persisted stores on boot, routes through the navigator and notifies subscribers on every
// change.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hyperjump/findly/internal/auth"
	"github.com/hyperjump/findly/internal/models"
	"github.com/hyperjump/findly/internal/navigation"
	"github.com/hyperjump/findly/internal/preference"
	"github.com/hyperjump/findly/internal/session"
	"github.com/hyperjump/findly/internal/storage"
	"github.com/hyperjump/findly/internal/theme"
	"github.com/hyperjump/findly/internal/views"
	"go.uber.org/zap"
)

// ErrSignedOut is returned by operations that need a session when there is none.
var ErrSignedOut = errors.New("app: not logged in")

// API is everything the root needs from the portal client.
type API interface {
	auth.API
	views.SearchAPI
	views.UploadAPI
	views.DocumentsAPI
	views.StatsAPI
}

// State is the application state. Version increases on every mutation, including changes inside
// the view adapters.
type State struct {
	Session  models.Session
	DarkMode bool
	View     models.ActiveView
	Version  uint64
}

// Root composes the stores, the controllers and the view adapters.
type Root struct {
	sessions *session.Store
	prefs    *preference.Store
	auth     *auth.Controller
	nav      *navigation.Navigator
	doc      *theme.Document
	logger   *zap.Logger

	Search    *views.Search
	Upload    *views.Upload
	Documents *views.Loader[[]models.DocumentSummary]
	Stats     *views.Loader[models.Stats]

	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Root.
type Option func(*Root)

// WithLogger sets the logger passed to every component.
func WithLogger(l *zap.Logger) Option {
	return func(r *Root) { r.logger = l }
}

// WithDocument sets the theme document the dark class is applied to.
func WithDocument(d *theme.Document) Option {
	return func(r *Root) { r.doc = d }
}

// New wires a root over api and kv. Call Boot before use.
func New(api API, kv storage.KV, opts ...Option) *Root {
	r := &Root{
		doc:    theme.NewDocument(),
		logger: zap.NewNop(),
		nav:    navigation.New(),
		subs:   make(map[int]func(State)),
		state:  State{View: models.ViewLogin},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sessions = session.NewStore(kv, session.WithLogger(r.logger.Named("session")))
	r.prefs = preference.NewStore(kv, preference.WithLogger(r.logger.Named("preference")))
	r.auth = auth.NewController(api, r.sessions, auth.WithLogger(r.logger.Named("auth")))

	viewOpts := func(name string) []views.Option {
		return []views.Option{
			views.WithLogger(r.logger.Named(name)),
			views.WithOnChange(func() { r.mutate(func(*State) {}) }),
			views.WithToken(r.Token),
		}
	}
	r.Search = views.NewSearch(api, viewOpts("search")...)
	r.Upload = views.NewUpload(api, viewOpts("upload")...)
	r.Documents = views.NewDocuments(api, viewOpts("documents")...)
	r.Stats = views.NewStats(api, viewOpts("stats")...)
	return r
}

// Boot restores the session and the dark-mode preference and resolves the first view.
func (r *Root) Boot(ctx context.Context) State {
	sess := r.sessions.Load(ctx)
	dark := r.prefs.Load(ctx)
	r.doc.SetClass(theme.DarkClass, dark)
	r.logger.Debug("booted", zap.Bool("session", sess.Present()), zap.Bool("dark_mode", dark))
	return r.mutate(func(s *State) {
		s.Session = sess
		s.DarkMode = dark
		s.View = r.nav.Current(sess)
	})
}

// Snapshot returns the current state.
func (r *Root) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Document returns the theme document.
func (r *Root) Document() *theme.Document {
	return r.doc
}

// Token returns the bearer token of the current session, or "".
func (r *Root) Token() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Session.Token
}

// Subscribe registers fn to receive the state after every mutation. The returned function
// removes the subscription.
func (r *Root) Subscribe(fn func(State)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// SubmitAuth submits the auth form. A successful login installs the session and moves to the
// default tab; a successful signup leaves the session untouched.
func (r *Root) SubmitAuth(ctx context.Context, mode auth.Mode, form auth.Form) (auth.Result, error) {
	res, err := r.auth.Submit(ctx, mode, form)
	if err != nil || res.Session == nil {
		return res, err
	}
	r.nav.Reset()
	r.mutate(func(s *State) {
		s.Session = *res.Session
		s.View = r.nav.Current(s.Session)
	})
	r.Search.Activate()
	return res, nil
}

// AuthBusy reports whether an auth submission is in flight.
func (r *Root) AuthBusy() bool {
	return r.auth.Busy()
}

// Logout drops the session from memory and storage and returns to the login view. The
// in-memory session is cleared even when storage fails.
func (r *Root) Logout(ctx context.Context) error {
	err := r.sessions.Clear(ctx)
	if err != nil {
		r.logger.Error("failed to clear persisted session", zap.Error(err))
		err = fmt.Errorf("logout: %w", err)
	}
	r.nav.Reset()
	r.deactivate(r.Snapshot().View)
	r.Upload.Reset()
	r.Search.Reset()
	r.mutate(func(s *State) {
		s.Session = models.NoSession()
		s.View = models.ViewLogin
	})
	return err
}

// SetDarkMode persists the preference and applies the dark class. The in-memory state follows
// the request even when storage fails.
func (r *Root) SetDarkMode(ctx context.Context, on bool) error {
	err := r.prefs.Save(ctx, on)
	if err != nil {
		r.logger.Error("failed to persist dark mode", zap.Error(err))
		err = fmt.Errorf("set dark mode: %w", err)
	}
	r.doc.SetClass(theme.DarkClass, on)
	r.mutate(func(s *State) { s.DarkMode = on })
	return err
}

// ToggleDarkMode flips the preference and returns the new value.
func (r *Root) ToggleDarkMode(ctx context.Context) (bool, error) {
	on := !r.Snapshot().DarkMode
	return on, r.SetDarkMode(ctx, on)
}

// Navigate selects tab and activates its adapter. Documents and statistics fetch during
// activation, so Navigate blocks until that fetch resolves. Without a session the view stays on
// login and nothing is fetched.
func (r *Root) Navigate(ctx context.Context, tab models.ActiveView) (State, error) {
	if err := r.nav.Select(tab); err != nil {
		return r.Snapshot(), err
	}
	prev := r.Snapshot().View
	st := r.mutate(func(s *State) { s.View = r.nav.Current(s.Session) })
	if st.View != prev {
		r.deactivate(prev)
	}
	switch st.View {
	case models.ViewSearch:
		r.Search.Activate()
	case models.ViewUpload:
		r.Upload.Activate()
	case models.ViewDocuments:
		r.Documents.Activate(ctx)
	case models.ViewStats:
		r.Stats.Activate(ctx)
	case models.ViewProfile, models.ViewLogin:
	}
	return r.Snapshot(), nil
}

// UploadSelected uploads the selected file with the session token.
func (r *Root) UploadSelected(ctx context.Context) (models.UploadOutcome, error) {
	token := r.Token()
	if token == "" {
		return nil, ErrSignedOut
	}
	return r.Upload.Upload(ctx, token)
}

// Profile projects the current session into the profile view.
func (r *Root) Profile() views.ProfileView {
	return views.Profile(r.Snapshot().Session)
}

func (r *Root) deactivate(v models.ActiveView) {
	switch v {
	case models.ViewSearch:
		r.Search.Deactivate()
	case models.ViewUpload:
		r.Upload.Deactivate()
	case models.ViewDocuments:
		r.Documents.Deactivate()
	case models.ViewStats:
		r.Stats.Deactivate()
	case models.ViewProfile, models.ViewLogin:
	}
}

// mutate applies fn, bumps the version and notifies subscribers outside the lock.
func (r *Root) mutate(fn func(*State)) State {
	r.mu.Lock()
	fn(&r.state)
	r.state.Version++
	st := r.state
	subs := make([]func(State), 0, len(r.subs))
	for _, s := range r.subs {
		subs = append(subs, s)
	}
	r.mu.Unlock()
	for _, s := range subs {
		s(st)
	}
	return st
}
