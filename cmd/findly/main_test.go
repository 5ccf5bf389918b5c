package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperjump/findly/internal/models"
	"github.com/hyperjump/findly/internal/portaltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchArgsReorder(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "flags after query are moved first",
			args:     []string{"cse papers", "-year", "2023"},
			expected: []string{"-year", "2023", "cse papers"},
		},
		{
			name:     "flags first returns unchanged",
			args:     []string{"-year", "2023", "cse papers"},
			expected: []string{"-year", "2023", "cse papers"},
		},
		{
			name:     "query only returns unchanged",
			args:     []string{"cse papers"},
			expected: []string{"cse papers"},
		},
		{
			name:     "empty args returns unchanged",
			args:     []string{},
			expected: []string{},
		},
		{
			name:     "multiple positionals then flags",
			args:     []string{"dbms", "notes", "-department", "CSE"},
			expected: []string{"-department", "CSE", "dbms", "notes"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := searchArgsReorder(tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("searchArgsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"dbms"}, "dbms"},
		{"multiple words", []string{"dbms", "notes"}, "dbms notes"},
		{"single quoted phrase", []string{"dbms notes"}, "dbms notes"},
		{"natural sentence", []string{"CSE", "question", "papers", "from", "2023"}, "CSE question papers from 2023"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
		{"one space", []string{" "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
api:
  base_url: "http://localhost:9000"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
api:
  base_url: "http://127.0.0.1:9000"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.API.BaseURL != "http://127.0.0.1:9000" {
		t.Errorf("unexpected api config: %+v", cfg.API)
	}
}

func TestLoadConfig_defaultsWhenNoFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved path = %q, want built-in defaults", resolved)
	}
	if cfg.API.BaseURL != "http://localhost:8000" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
}

// cliHarness runs commands against a fake portal with state in a temp dir.
type cliHarness struct {
	t      *testing.T
	portal *portaltest.Portal
	config string
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	portal := portaltest.New(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("api:\n  base_url: %q\nstate:\n  path: ./state.db\noutput:\n  color: false\n", portal.URL())
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0600))
	return &cliHarness{t: t, portal: portal, config: configPath}
}

// run executes one command; args after the command name get the harness config appended.
func (h *cliHarness) run(command string, args ...string) (int, string, string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	argv := append([]string{command, "-config", h.config}, args...)
	code := run(argv, stdio{in: strings.NewReader(""), out: &out, err: &errOut})
	return code, out.String(), errOut.String()
}

func (h *cliHarness) login() {
	h.t.Helper()
	code, out, errOut := h.run("login", "-email", portaltest.DemoEmail, "-password", portaltest.DemoPassword)
	require.Equal(h.t, 0, code, "stdout=%s stderr=%s", out, errOut)
}

func TestCLI_loginProfileLogout(t *testing.T) {
	h := newCLIHarness(t)

	code, out, _ := h.run("login", "-email", portaltest.DemoEmail, "-password", portaltest.DemoPassword)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Logged in as Admin (Admin)")

	code, out, _ = h.run("whoami", "-output", "json")
	require.Equal(t, 0, code)
	var profile map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, "Admin", profile["name"])
	assert.Equal(t, "A", profile["initial"])
	assert.Equal(t, portaltest.DemoEmail, profile["email"])

	code, out, _ = h.run("logout")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Logged out.")

	code, _, errOut := h.run("whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "not logged in")
}

func TestCLI_loginFailureShowsServerDetail(t *testing.T) {
	h := newCLIHarness(t)

	code, out, _ := h.run("login", "-email", portaltest.DemoEmail, "-password", "wrong")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Invalid email or password")

	code, _, _ = h.run("stats")
	assert.Equal(t, 1, code)
	assert.Equal(t, 0, h.portal.Calls(portaltest.RouteStats))
}

func TestCLI_loginPromptsForMissingFields(t *testing.T) {
	h := newCLIHarness(t)
	var out, errOut bytes.Buffer
	in := strings.NewReader(portaltest.DemoEmail + "\n" + portaltest.DemoPassword + "\n")

	code := run([]string{"login", "-config", h.config}, stdio{in: in, out: &out, err: &errOut})
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, errOut.String(), "Email: ")
	assert.Contains(t, errOut.String(), "Password: ")
	assert.Contains(t, out.String(), "Logged in as Admin")
}

func TestCLI_search(t *testing.T) {
	h := newCLIHarness(t)
	h.portal.SetDocuments([]models.DocumentSummary{
		{Filename: "cse-2023.pdf", Category: "Question Paper", Department: "CSE", Year: 2023},
		{Filename: "ece-2022.pdf", Category: "Notes", Department: "ECE", Year: 2022},
	})
	h.login()

	code, out, _ := h.run("search", "cse", "papers", "from", "2023")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "cse-2023.pdf")
	assert.NotContains(t, out, "ece-2022.pdf")
	assert.Contains(t, out, "Open: "+h.portal.URL()+"/uploads/cse-2023.pdf")

	code, out, _ = h.run("search", "notes", "-department", "ECE", "-output", "json")
	require.Equal(t, 0, code)
	var res struct {
		Query   string `json:"query"`
		Filters struct {
			Department string `json:"department"`
		} `json:"filters"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "notes", res.Query)
	assert.Equal(t, "ECE", res.Filters.Department)
	assert.JSONEq(t, `{"query":"notes","filters":{"department":"ECE"}}`, string(h.portal.LastBody(portaltest.RouteChatSearch)))
}

func TestCLI_searchWithoutQuery(t *testing.T) {
	h := newCLIHarness(t)
	h.login()

	code, _, errOut := h.run("search")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "Usage: findly search")
	assert.Equal(t, 0, h.portal.Calls(portaltest.RouteChatSearch))
}

func TestCLI_upload(t *testing.T) {
	h := newCLIHarness(t)
	h.login()
	path := filepath.Join(t.TempDir(), "dbms-unit1.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0600))

	code, out, _ := h.run("upload", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Selected: dbms-unit1.pdf")
	assert.Contains(t, out, "Upload Successful!")
	assert.Contains(t, out, "Category: Notes")
	content, ok := h.portal.Uploaded("dbms-unit1.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.4", string(content))
}

func TestCLI_uploadFailure(t *testing.T) {
	h := newCLIHarness(t)
	h.login()
	h.portal.Respond(portaltest.RouteUpload, 413, map[string]string{"detail": "file too large"})
	path := filepath.Join(t.TempDir(), "big.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	code, out, _ := h.run("upload", "-output", "compact", path)
	assert.Equal(t, 1, code)
	assert.Equal(t, "failed\tfile too large\n", out)
}

func TestCLI_documentsFetchEachRun(t *testing.T) {
	h := newCLIHarness(t)
	h.portal.SetDocuments([]models.DocumentSummary{{Filename: "a.pdf", Category: "Notes"}})
	h.login()

	for i := 1; i <= 2; i++ {
		code, out, _ := h.run("documents", "-output", "compact")
		require.Equal(t, 0, code)
		assert.Equal(t, "a.pdf\tNotes\t-\t-\n", out)
		assert.Equal(t, i, h.portal.Calls(portaltest.RouteDocuments))
	}
}

func TestCLI_themePersists(t *testing.T) {
	h := newCLIHarness(t)

	code, out, _ := h.run("theme", "dark")
	require.Equal(t, 0, code)
	assert.Equal(t, "Dark mode\n", out)

	_, out, _ = h.run("theme", "show")
	assert.Equal(t, "Dark mode\n", out)

	_, out, _ = h.run("theme")
	assert.Equal(t, "Light mode\n", out)

	code, _, _ = h.run("theme", "purple")
	assert.Equal(t, 2, code)
}

func TestCLI_openPrintsLinkWithoutFetching(t *testing.T) {
	h := newCLIHarness(t)

	code, out, _ := h.run("open", "unit 1.pdf")
	require.Equal(t, 0, code)
	assert.Equal(t, h.portal.URL()+"/uploads/unit%201.pdf\n", out)
	assert.Equal(t, 0, h.portal.Calls(portaltest.RouteUploads))
}

func TestCLI_status(t *testing.T) {
	h := newCLIHarness(t)
	h.login()

	code, out, _ := h.run("status", "-output", "json")
	require.Equal(t, 0, code)
	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Reachable)
	assert.Equal(t, "Findly backend is running", report.Message)
	assert.True(t, report.LoggedIn)
	assert.Equal(t, "admin", report.Role)
}

func TestCLI_configInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findly", "config.yaml")
	var out, errOut bytes.Buffer
	std := stdio{in: strings.NewReader(""), out: &out, err: &errOut}

	require.Equal(t, 0, run([]string{"config", "init", "-config", path}, std))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://localhost:8000")

	assert.Equal(t, 1, run([]string{"config", "init", "-config", path}, std))
	assert.Contains(t, errOut.String(), "already exists")
	assert.Equal(t, 0, run([]string{"config", "init", "-config", path, "-force"}, std))
}

func TestRun_unknownCommand(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"frobnicate"}, stdio{in: strings.NewReader(""), out: &out, err: &errOut})
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "Unknown command: frobnicate")
}
