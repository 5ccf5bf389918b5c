package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/findly/internal/client"
	"github.com/hyperjump/findly/internal/models"
	"github.com/hyperjump/findly/internal/portaltest"
	"github.com/hyperjump/findly/internal/session"
	"github.com/hyperjump/findly/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, baseURL string) (*Controller, *session.Store) {
	t.Helper()
	kv, err := storage.NewSQLiteKV(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	store := session.NewStore(kv)
	return NewController(client.New(baseURL), store), store
}

func TestSubmit_LoginEstablishesSession(t *testing.T) {
	portal := portaltest.New(t)
	ctrl, store := newController(t, portal.URL())

	res, err := ctrl.Submit(context.Background(), ModeLogin, Form{Email: portaltest.DemoEmail, Password: portaltest.DemoPassword})
	require.NoError(t, err)
	require.NotNil(t, res.Session)
	assert.Equal(t, "T", res.Session.Token)
	assert.Equal(t, models.RoleAdmin, res.Session.User.Role)
	assert.Equal(t, portaltest.DemoEmail, res.Session.User.Email)
	assert.False(t, res.SwitchToLogin)

	persisted := store.Load(context.Background())
	require.True(t, persisted.Present())
	assert.Equal(t, "T", persisted.Token)
	assert.Equal(t, "Admin", persisted.User.Name)
}

func TestSubmit_LoginIgnoresSignupFields(t *testing.T) {
	portal := portaltest.New(t)
	ctrl, _ := newController(t, portal.URL())
	_, err := ctrl.Submit(context.Background(), ModeLogin, Form{
		Email: portaltest.DemoEmail, Password: portaltest.DemoPassword, Name: "ignored", Role: "student", Branch: "CSE",
	})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(portal.LastBody(portaltest.RouteLogin), &body))
	assert.Equal(t, map[string]interface{}{"email": portaltest.DemoEmail, "password": portaltest.DemoPassword}, body)
}

func TestSubmit_ErrorShaping(t *testing.T) {
	t.Run("server detail", func(t *testing.T) {
		portal := portaltest.New(t)
		ctrl, store := newController(t, portal.URL())
		_, err := ctrl.Submit(context.Background(), ModeLogin, Form{Email: portaltest.DemoEmail, Password: "wrong"})
		var authErr *Error
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, KindAuth, authErr.Kind)
		assert.Contains(t, authErr.Message, "Invalid email or password")
		assert.False(t, store.Load(context.Background()).Present())
	})
	t.Run("generic http failure", func(t *testing.T) {
		portal := portaltest.New(t)
		portal.Respond(portaltest.RouteLogin, http.StatusInternalServerError, "oops")
		ctrl, _ := newController(t, portal.URL())
		_, err := ctrl.Submit(context.Background(), ModeLogin, Form{Email: "a@b.io", Password: "x"})
		var authErr *Error
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, KindAuth, authErr.Kind)
		assert.Equal(t, MsgAuthFailed, authErr.Message)
	})
	t.Run("network failure", func(t *testing.T) {
		ctrl, _ := newController(t, "http://127.0.0.1:1")
		_, err := ctrl.Submit(context.Background(), ModeLogin, Form{Email: "a@b.io", Password: "x"})
		var authErr *Error
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, KindNetwork, authErr.Kind)
		assert.Equal(t, MsgNetwork, Message(err))
		assert.NotEqual(t, MsgAuthFailed, Message(err))
	})
	t.Run("unknown role in response", func(t *testing.T) {
		portal := portaltest.New(t)
		portal.Respond(portaltest.RouteLogin, http.StatusOK, map[string]string{"access_token": "T", "name": "X", "role": "guest"})
		ctrl, store := newController(t, portal.URL())
		_, err := ctrl.Submit(context.Background(), ModeLogin, Form{Email: "a@b.io", Password: "x"})
		var authErr *Error
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, KindNetwork, authErr.Kind)
		assert.False(t, store.Load(context.Background()).Present())
	})
}

func TestSubmit_ValidationBlocksDispatch(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		form Form
	}{
		{"login missing password", ModeLogin, Form{Email: "a@b.io"}},
		{"login missing email", ModeLogin, Form{Password: "x"}},
		{"login bad email", ModeLogin, Form{Email: "not-an-email", Password: "x"}},
		{"signup missing name", ModeSignup, Form{Email: "a@b.io", Password: "x", Role: "teacher"}},
		{"signup unknown role", ModeSignup, Form{Name: "n", Email: "a@b.io", Password: "x", Role: "guest"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			portal := portaltest.New(t)
			ctrl, _ := newController(t, portal.URL())
			_, err := ctrl.Submit(context.Background(), tt.mode, tt.form)
			var authErr *Error
			require.True(t, errors.As(err, &authErr), "got %v", err)
			assert.Equal(t, KindValidation, authErr.Kind)
			assert.NotEmpty(t, authErr.Message)
			assert.Zero(t, portal.Calls(portaltest.RouteLogin)+portal.Calls(portaltest.RouteSignup))
		})
	}
}

func TestSubmit_SignupStudentWithEmptyBranch(t *testing.T) {
	portal := portaltest.New(t)
	ctrl, store := newController(t, portal.URL())

	res, err := ctrl.Submit(context.Background(), ModeSignup, Form{
		Name: "Asha", Email: "asha@findly.com", Password: "pw", Role: "student", Semester: "6",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, portal.Calls(portaltest.RouteSignup))
	assert.True(t, res.SwitchToLogin)
	assert.True(t, res.Success())
	assert.Contains(t, res.Notice, "created")
	assert.Nil(t, res.Session)
	assert.False(t, store.Load(context.Background()).Present(), "signup never establishes a session")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(portal.LastBody(portaltest.RouteSignup), &body))
	assert.Equal(t, "", body["branch"])
	assert.Equal(t, "6", body["semester"])
	assert.Equal(t, "student", body["role"])
}

func TestSubmit_SignupOmitsStudentFieldsForTeacher(t *testing.T) {
	portal := portaltest.New(t)
	ctrl, _ := newController(t, portal.URL())
	_, err := ctrl.Submit(context.Background(), ModeSignup, Form{
		Name: "T", Email: "t@findly.com", Password: "pw", Role: "teacher", Branch: "CSE", Semester: "6",
	})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(portal.LastBody(portaltest.RouteSignup), &body))
	assert.NotContains(t, body, "branch")
	assert.NotContains(t, body, "semester")
}

func TestSubmit_SignupDuplicateEmail(t *testing.T) {
	portal := portaltest.New(t)
	ctrl, _ := newController(t, portal.URL())
	res, err := ctrl.Submit(context.Background(), ModeSignup, Form{
		Name: "A", Email: portaltest.DemoEmail, Password: "pw", Role: "admin",
	})
	require.Error(t, err)
	assert.False(t, res.SwitchToLogin)
	assert.Contains(t, Message(err), "already registered")
}

func TestSubmit_RapidDoubleLoginDispatchesOnce(t *testing.T) {
	portal := portaltest.New(t)
	arrived, release := portal.Hold(portaltest.RouteLogin)
	defer release()
	ctrl, _ := newController(t, portal.URL())
	form := Form{Email: portaltest.DemoEmail, Password: portaltest.DemoPassword}

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background(), ModeLogin, form)
		done <- err
	}()

	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("first login never reached the portal")
	}
	assert.True(t, ctrl.Busy())

	_, err := ctrl.Submit(context.Background(), ModeLogin, form)
	assert.ErrorIs(t, err, ErrBusy)

	release()
	require.NoError(t, <-done)
	assert.False(t, ctrl.Busy())
	assert.Equal(t, 1, portal.Calls(portaltest.RouteLogin))
}
