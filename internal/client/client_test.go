package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hyperjump/findly/internal/models"
	"github.com/hyperjump/findly/internal/portaltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_LoginSendsExactlyEmailAndPassword(t *testing.T) {
	portal := portaltest.New(t)
	c := New(portal.URL())

	resp, err := c.Login(context.Background(), LoginRequest{Email: portaltest.DemoEmail, Password: portaltest.DemoPassword})
	require.NoError(t, err)
	assert.Equal(t, portaltest.DemoToken, resp.AccessToken)
	assert.Equal(t, "admin", resp.Role)
	assert.Empty(t, resp.Branch, "null branch decodes to empty")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(portal.LastBody(portaltest.RouteLogin), &body))
	assert.Len(t, body, 2)
	assert.Contains(t, body, "email")
	assert.Contains(t, body, "password")

	_, err = uuid.Parse(portal.LastRequestID(portaltest.RouteLogin))
	assert.NoError(t, err, "every request carries a UUID request id")
}

func TestClient_ErrorShapes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       interface{}
		wantDetail string
	}{
		{"string detail", http.StatusUnauthorized, map[string]string{"detail": "bad creds"}, "bad creds"},
		{"validation list", http.StatusUnprocessableEntity, map[string]interface{}{
			"detail": []map[string]interface{}{{"loc": []string{"body", "email"}, "msg": "value is not a valid email address"}},
		}, "value is not a valid email address"},
		{"no detail", http.StatusInternalServerError, map[string]string{"error": "boom"}, ""},
		{"non-json body", http.StatusBadGateway, "<html>bad gateway</html>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			portal := portaltest.New(t)
			portal.Respond(portaltest.RouteLogin, tt.status, tt.body)
			_, err := New(portal.URL()).Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "x"})
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %T: %v", err, err)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
		})
	}
}

func TestClient_NetworkErrors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		_, err := New("http://127.0.0.1:1").Stats(context.Background())
		var netErr *NetworkError
		assert.True(t, errors.As(err, &netErr), "got %T: %v", err, err)
	})
	t.Run("undecodable success body", func(t *testing.T) {
		portal := portaltest.New(t)
		portal.Respond(portaltest.RouteDocuments, http.StatusOK, "not json")
		_, err := New(portal.URL()).Documents(context.Background())
		var netErr *NetworkError
		assert.True(t, errors.As(err, &netErr), "got %T: %v", err, err)
	})
	t.Run("login without token", func(t *testing.T) {
		portal := portaltest.New(t)
		portal.Respond(portaltest.RouteLogin, http.StatusOK, map[string]string{"name": "x"})
		_, err := New(portal.URL()).Login(context.Background(), LoginRequest{Email: "a@b.c", Password: "x"})
		var netErr *NetworkError
		assert.True(t, errors.As(err, &netErr), "got %T: %v", err, err)
	})
}

func TestClient_SignupAcceptsEmptyAck(t *testing.T) {
	portal := portaltest.New(t)
	portal.Respond(portaltest.RouteSignup, http.StatusCreated, "")
	err := New(portal.URL()).Signup(context.Background(), SignupRequest{Name: "n", Email: "n@x.io", Password: "p", Role: "teacher"})
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(portal.LastBody(portaltest.RouteSignup), &body))
	assert.NotContains(t, body, "branch")
	assert.NotContains(t, body, "semester")
}

func TestClient_ChatSearchForwardsTokenAndNormalizes(t *testing.T) {
	portal := portaltest.New(t)
	portal.Respond(portaltest.RouteChatSearch, http.StatusOK, map[string]interface{}{"total": 0})
	resp, err := New(portal.URL()).ChatSearch(context.Background(), "T", models.SearchRequest{Query: "AI reports 2023"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
	assert.Nil(t, resp.QueryUnderstanding)
}

func TestClient_UploadMultipart(t *testing.T) {
	portal := portaltest.New(t)
	c := New(portal.URL())
	out, err := c.Upload(context.Background(), "notes.pdf", strings.NewReader("%PDF-1.4"), portaltest.DemoToken)
	require.NoError(t, err)
	assert.Equal(t, "Notes", out.Category)

	content, ok := portal.Uploaded("notes.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4", string(content))
}

func TestClient_DocumentURL(t *testing.T) {
	c := New("http://localhost:8000/")
	assert.Equal(t, "http://localhost:8000/uploads/20240101_120000_my%20notes.pdf", c.DocumentURL("20240101_120000_my notes.pdf"))
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
}

func TestClient_StatsAndFilters(t *testing.T) {
	portal := portaltest.New(t)
	portal.SetDocuments([]models.DocumentSummary{
		{Filename: "a.pdf", Category: "Notes", Department: "CSE", Year: 2023},
		{Filename: "b.pdf", Category: "Thesis", Department: "ECE", Year: 2021},
		{Filename: "c.pdf"},
	})
	c := New(portal.URL())
	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 1, stats.TotalUsers)
	assert.Equal(t, 1, stats.DocumentsByDepartment["Unknown"])
	assert.Equal(t, 1, stats.DocumentsByYear["2023"])

	filters, err := c.Filters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CSE", "ECE"}, filters.Departments)
	assert.Equal(t, []models.Year{2023, 2021}, filters.Years)

	msg, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
}

func TestClient_UnparsableYearsDecodeAsUnknown(t *testing.T) {
	portal := portaltest.New(t)
	portal.Respond(portaltest.RouteDocuments, http.StatusOK, []map[string]interface{}{
		{"filename": "a.pdf", "year": 2023},
		{"filename": "b.pdf", "year": "2022-23"},
	})
	portal.Respond(portaltest.RouteFilters, http.StatusOK, map[string]interface{}{
		"departments":    []string{"CSE"},
		"years":          []interface{}{"2023", 2021, "2020-21"},
		"document_types": []string{"Notes"},
	})
	portal.Respond(portaltest.RouteChatSearch, http.StatusOK, map[string]interface{}{
		"results": []map[string]interface{}{{"filename": "c.pdf", "year": "unknown"}},
		"total":   1,
	})
	c := New(portal.URL())

	docs, err := c.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, models.Year(2023), docs[0].Year)
	assert.False(t, docs[1].Year.Known())

	filters, err := c.Filters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Year{2023, 2021, 0}, filters.Years)

	resp, err := c.ChatSearch(context.Background(), "", models.SearchRequest{Query: "notes"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "c.pdf", resp.Results[0].Filename)
	assert.False(t, resp.Results[0].Year.Known())
}
