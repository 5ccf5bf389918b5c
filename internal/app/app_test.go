package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hyperjump/findly/internal/auth"
	"github.com/hyperjump/findly/internal/client"
	"github.com/hyperjump/findly/internal/models"
	"github.com/hyperjump/findly/internal/portaltest"
	"github.com/hyperjump/findly/internal/storage"
	"github.com/hyperjump/findly/internal/theme"
	"github.com/hyperjump/findly/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	portal *portaltest.Portal
	dbPath string
}

func newHarness(t *testing.T) *harness {
	return &harness{portal: portaltest.New(t), dbPath: filepath.Join(t.TempDir(), "state.db")}
}

// open simulates a fresh process start over the same persisted storage.
func (h *harness) open(t *testing.T) *Root {
	t.Helper()
	kv, err := storage.NewSQLiteKV(h.dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	r := New(client.New(h.portal.URL()), kv, WithDocument(theme.NewDocument()))
	r.Boot(context.Background())
	return r
}

func login(t *testing.T, r *Root) {
	t.Helper()
	_, err := r.SubmitAuth(context.Background(), auth.ModeLogin, auth.Form{
		Email: portaltest.DemoEmail, Password: portaltest.DemoPassword,
	})
	require.NoError(t, err)
}

func TestBoot_FreshStart(t *testing.T) {
	h := newHarness(t)
	r := h.open(t)

	st := r.Snapshot()
	assert.False(t, st.Session.Present())
	assert.False(t, st.DarkMode)
	assert.Equal(t, models.ViewLogin, st.View)
	assert.False(t, r.Document().Dark())
}

func TestLogin_AdminNavigatesToSearchAndSurvivesRestart(t *testing.T) {
	h := newHarness(t)
	r := h.open(t)
	login(t, r)

	st := r.Snapshot()
	require.True(t, st.Session.Present())
	assert.Equal(t, models.RoleAdmin, st.Session.User.Role)
	assert.Equal(t, models.ViewSearch, st.View)
	assert.Equal(t, portaltest.DemoToken, r.Token())

	restarted := h.open(t).Snapshot()
	require.True(t, restarted.Session.Present())
	assert.Equal(t, st.Session, restarted.Session)
	assert.Equal(t, models.ViewSearch, restarted.View)
}

func TestSignup_DoesNotEstablishSession(t *testing.T) {
	h := newHarness(t)
	r := h.open(t)
	res, err := r.SubmitAuth(context.Background(), auth.ModeSignup, auth.Form{
		Name: "S", Email: "s@findly.com", Password: "pw", Role: "student",
	})
	require.NoError(t, err)
	assert.True(t, res.SwitchToLogin)
	assert.False(t, r.Snapshot().Session.Present())
	assert.Equal(t, models.ViewLogin, r.Snapshot().View)
}

func TestLogout_ThenRestartShowsLogin(t *testing.T) {
	h := newHarness(t)
	r := h.open(t)
	login(t, r)
	_, err := r.Navigate(context.Background(), models.ViewUpload)
	require.NoError(t, err)
	r.Upload.Select(views.NewFile("a.pdf", []byte("x")))

	require.NoError(t, r.Logout(context.Background()))
	st := r.Snapshot()
	assert.False(t, st.Session.Present())
	assert.Equal(t, models.ViewLogin, st.View)
	assert.Nil(t, r.Upload.State().Selected)
	assert.Empty(t, r.Token())

	restarted := h.open(t).Snapshot()
	assert.False(t, restarted.Session.Present())
	assert.Equal(t, models.ViewLogin, restarted.View)

	// Logging back in lands on the default tab, not the one used before logout.
	login(t, r)
	assert.Equal(t, models.ViewSearch, r.Snapshot().View)
}

func TestLogout_KeepsDarkMode(t *testing.T) {
	h := newHarness(t)
	r := h.open(t)
	login(t, r)
	require.NoError(t, r.SetDarkMode(context.Background(), true))
	require.NoError(t, r.Logout(context.Background()))

	restarted := h.open(t)
	assert.True(t, restarted.Snapshot().DarkMode)
	assert.True(t, restarted.Document().Dark())
}

func TestToggleDarkMode_TwiceRestoresTheme(t *testing.T) {
	h := newHarness(t)
	r := h.open(t)
	before := r.Document().Classes()

	on, err := r.ToggleDarkMode(context.Background())
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, r.Document().HasClass(theme.DarkClass))
	assert.True(t, h.open(t).Snapshot().DarkMode, "first toggle persists")

	on, err = r.ToggleDarkMode(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, before, r.Document().Classes())

	restarted := h.open(t)
	assert.False(t, restarted.Snapshot().DarkMode)
	assert.False(t, restarted.Document().Dark())
}

func TestNavigate_SignedOutStaysOnLogin(t *testing.T) {
	h := newHarness(t)
	h.portal.SetDocuments([]models.DocumentSummary{{Filename: "a.pdf"}})
	r := h.open(t)

	for _, tab := range models.AuthenticatedViews {
		st, err := r.Navigate(context.Background(), tab)
		require.NoError(t, err)
		assert.Equal(t, models.ViewLogin, st.View, tab)
	}
	assert.Zero(t, h.portal.Calls(portaltest.RouteDocuments))
	assert.Zero(t, h.portal.Calls(portaltest.RouteStats))

	_, err := r.Navigate(context.Background(), models.ViewLogin)
	assert.Error(t, err)
}

func TestNavigate_FetchesOnEveryActivation(t *testing.T) {
	h := newHarness(t)
	h.portal.SetDocuments([]models.DocumentSummary{{Filename: "a.pdf", Department: "CSE"}})
	r := h.open(t)
	login(t, r)

	st, err := r.Navigate(context.Background(), models.ViewDocuments)
	require.NoError(t, err)
	assert.Equal(t, models.ViewDocuments, st.View)
	assert.Len(t, r.Documents.State().Data, 1)

	_, err = r.Navigate(context.Background(), models.ViewStats)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Stats.State().Data.TotalDocuments)

	_, err = r.Navigate(context.Background(), models.ViewDocuments)
	require.NoError(t, err)
	assert.Equal(t, 2, h.portal.Calls(portaltest.RouteDocuments))
	assert.Equal(t, 1, h.portal.Calls(portaltest.RouteStats))
}

func TestSubscribe_ObservesEveryChange(t *testing.T) {
	h := newHarness(t)
	r := h.open(t)

	var mu sync.Mutex
	var seen []State
	unsubscribe := r.Subscribe(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	login(t, r)
	_, err := r.ToggleDarkMode(context.Background())
	require.NoError(t, err)
	r.Search.Search(context.Background(), "notes")

	mu.Lock()
	count := len(seen)
	require.GreaterOrEqual(t, count, 3)
	for i := 1; i < count; i++ {
		assert.Greater(t, seen[i].Version, seen[i-1].Version)
	}
	last := seen[count-1]
	mu.Unlock()
	assert.Equal(t, r.Snapshot(), last)

	unsubscribe()
	_, err = r.ToggleDarkMode(context.Background())
	require.NoError(t, err)
	mu.Lock()
	assert.Len(t, seen, count)
	mu.Unlock()
}

func TestUploadSelected(t *testing.T) {
	h := newHarness(t)
	r := h.open(t)
	r.Upload.Select(views.NewFile("a.pdf", []byte("x")))
	_, err := r.UploadSelected(context.Background())
	assert.ErrorIs(t, err, ErrSignedOut)

	login(t, r)
	outcome, err := r.UploadSelected(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.Succeeded())
	_, ok := h.portal.Uploaded("a.pdf")
	assert.True(t, ok)
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	r := h.open(t)
	assert.Equal(t, "N/A", r.Profile().DisplayName)
	login(t, r)
	p := r.Profile()
	assert.Equal(t, "Admin", p.DisplayName)
	assert.Equal(t, "A", p.Initial)
	assert.Equal(t, "Admin", p.RoleTitle)
	assert.False(t, p.StudentFields)
}
