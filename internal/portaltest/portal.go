// Package portaltest runs an in-process stand-in for the Findly portal service so client,
// controller and adapter tests can exercise real HTTP round trips.
package portaltest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/findly/internal/models"
)

// Route names used by Calls, Hold and Respond.
const (
	RouteHealth     = "health"
	RouteLogin      = "login"
	RouteSignup     = "signup"
	RouteChatSearch = "chat-search"
	RouteUpload     = "upload"
	RouteDocuments  = "documents"
	RouteStats      = "stats"
	RouteFilters    = "filters"
	RouteUploads    = "uploads"
)

// DemoEmail and DemoPassword are the seeded administrator account.
const (
	DemoEmail    = "admin@findly.com"
	DemoPassword = "admin123"
	DemoToken    = "T"
)

// User is an account known to the portal.
type User struct {
	Name     string
	Email    string
	Password string
	Role     string
	Branch   string
	Semester string
	Token    string
}

type canned struct {
	status int
	body   interface{}
}

type hold struct {
	arrived chan struct{}
	once    sync.Once
	release chan struct{}
}

// Portal is a fake portal service backed by an httptest.Server.
type Portal struct {
	server *httptest.Server

	mu         sync.Mutex
	users      map[string]User
	documents  []models.DocumentSummary
	calls      map[string]int
	bodies     map[string][]byte
	requestIDs map[string]string
	canned     map[string]canned
	holds      map[string]*hold
	uploads    map[string][]byte
}

// New starts a portal seeded with the demo administrator. The server is closed when the test ends.
func New(t testing.TB) *Portal {
	t.Helper()
	p := &Portal{
		users:      make(map[string]User),
		calls:      make(map[string]int),
		bodies:     make(map[string][]byte),
		requestIDs: make(map[string]string),
		canned:     make(map[string]canned),
		holds:      make(map[string]*hold),
		uploads:    make(map[string][]byte),
	}
	p.AddUser(User{Name: "Admin", Email: DemoEmail, Password: DemoPassword, Role: "admin", Token: DemoToken})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", p.route(RouteHealth, p.handleHealth))
	r.Post("/login", p.route(RouteLogin, p.handleLogin))
	r.Post("/signup", p.route(RouteSignup, p.handleSignup))
	r.Post("/chat-search", p.route(RouteChatSearch, p.handleChatSearch))
	r.Post("/upload", p.route(RouteUpload, p.handleUpload))
	r.Get("/documents", p.route(RouteDocuments, p.handleDocuments))
	r.Get("/stats", p.route(RouteStats, p.handleStats))
	r.Get("/filters", p.route(RouteFilters, p.handleFilters))
	r.Get("/uploads/{filename}", p.route(RouteUploads, p.handleUploads))

	p.server = httptest.NewServer(r)
	t.Cleanup(p.server.Close)
	return p
}

// URL is the portal base address.
func (p *Portal) URL() string {
	return p.server.URL
}

// AddUser registers an account. An empty Token gets a derived one.
func (p *Portal) AddUser(u User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u.Token == "" {
		u.Token = "token-" + u.Email
	}
	p.users[u.Email] = u
}

// SetDocuments replaces the stored documents.
func (p *Portal) SetDocuments(docs []models.DocumentSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.documents = append([]models.DocumentSummary(nil), docs...)
}

// Respond makes route answer with status and body (JSON-encoded unless it is a string) instead of
// its default behaviour.
func (p *Portal) Respond(route string, status int, body interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.canned[route] = canned{status: status, body: body}
}

// Calls returns how many requests route has received.
func (p *Portal) Calls(route string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[route]
}

// LastBody returns the raw body of the latest request to route.
func (p *Portal) LastBody(route string) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bodies[route]
}

// LastRequestID returns the X-Request-ID header of the latest request to route.
func (p *Portal) LastRequestID(route string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestIDs[route]
}

// Uploaded returns the stored content of an uploaded file.
func (p *Portal) Uploaded(filename string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.uploads[filename]
	return b, ok
}

// Hold parks requests to route until release is called. arrived is closed when the first
// parked request comes in.
func (p *Portal) Hold(route string) (arrived <-chan struct{}, release func()) {
	h := &hold{arrived: make(chan struct{}), release: make(chan struct{})}
	p.mu.Lock()
	p.holds[route] = h
	p.mu.Unlock()
	var once sync.Once
	return h.arrived, func() {
		once.Do(func() {
			p.mu.Lock()
			if p.holds[route] == h {
				delete(p.holds, route)
			}
			p.mu.Unlock()
			close(h.release)
		})
	}
}

func (p *Portal) route(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil && !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		p.mu.Lock()
		p.calls[name]++
		p.bodies[name] = body
		p.requestIDs[name] = r.Header.Get("X-Request-ID")
		h := p.holds[name]
		c, hasCanned := p.canned[name]
		p.mu.Unlock()

		if h != nil {
			h.once.Do(func() { close(h.arrived) })
			select {
			case <-h.release:
			case <-r.Context().Done():
				return
			}
		}
		if hasCanned {
			if s, ok := c.body.(string); ok {
				w.WriteHeader(c.status)
				_, _ = io.WriteString(w, s)
				return
			}
			respondJSON(w, c.status, c.body)
			return
		}
		next(w, r)
	}
}

func (p *Portal) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "Findly backend is running"})
}

func (p *Portal) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	p.mu.Lock()
	u, ok := p.users[in.Email]
	p.mu.Unlock()
	if !ok || u.Password != in.Password {
		respondDetail(w, http.StatusUnauthorized, "Invalid email or password. Please check your credentials and try again.")
		return
	}
	out := map[string]interface{}{
		"access_token": u.Token,
		"name":         u.Name,
		"role":         u.Role,
		"branch":       nil,
		"semester":     nil,
	}
	if u.Branch != "" {
		out["branch"] = u.Branch
	}
	if u.Semester != "" {
		out["semester"] = u.Semester
	}
	respondJSON(w, http.StatusOK, out)
}

func (p *Portal) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string  `json:"name"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Role     string  `json:"role"`
		Branch   *string `json:"branch"`
		Semester *string `json:"semester"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid registration")
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.users[in.Email]; exists {
		respondDetail(w, http.StatusBadRequest, "Email already registered. Please use a different email or login.")
		return
	}
	u := User{Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role, Token: "token-" + in.Email}
	if in.Role == "student" {
		if in.Branch != nil {
			u.Branch = *in.Branch
		}
		if in.Semester != nil {
			u.Semester = *in.Semester
		}
	}
	p.users[in.Email] = u
	respondJSON(w, http.StatusOK, map[string]string{"message": "Registered successfully"})
}

var yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)

var departments = []string{"CSE", "ECE", "EEE", "MECH", "CIVIL", "IT", "ADMIN", "GENERAL"}

func (p *Portal) handleChatSearch(w http.ResponseWriter, r *http.Request) {
	var in models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid query")
		return
	}
	q := strings.ToLower(in.Query)
	understanding := map[string]interface{}{
		"extracted_year":       nil,
		"extracted_department": nil,
		"extracted_type":       nil,
	}
	var year int
	if m := yearPattern.FindStringSubmatch(q); m != nil {
		fmt.Sscanf(m[1], "%d", &year)
		understanding["extracted_year"] = year
	}
	dept := ""
	for _, d := range departments {
		if strings.Contains(q, strings.ToLower(d)) {
			dept = d
			understanding["extracted_department"] = d
			break
		}
	}

	p.mu.Lock()
	results := make([]models.DocumentSummary, 0, len(p.documents))
	for _, d := range p.documents {
		if year != 0 && int(d.Year) != year {
			continue
		}
		if dept != "" && d.Department != dept {
			continue
		}
		results = append(results, d)
	}
	p.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results":             results,
		"total":               len(results),
		"query_understanding": understanding,
	})
}

func (p *Portal) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	token := r.FormValue("token")
	p.mu.Lock()
	var uploader *User
	for _, u := range p.users {
		if u.Token == token {
			u := u
			uploader = &u
			break
		}
	}
	p.mu.Unlock()
	if uploader == nil {
		respondDetail(w, http.StatusUnauthorized, "Session expired or invalid. Please login again.")
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		respondDetail(w, http.StatusUnprocessableEntity, "file is required")
		return
	}
	defer f.Close()
	content, _ := io.ReadAll(f)

	p.mu.Lock()
	p.uploads[hdr.Filename] = content
	p.documents = append(p.documents, models.DocumentSummary{
		Filename: hdr.Filename,
		Category: "Notes",
		Summary:  "AI summarization disabled (no key)",
		Uploader: uploader.Email,
	})
	p.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Uploaded successfully",
		"summary":  "AI summarization disabled (no key)",
		"category": "Notes",
		"metadata": map[string]interface{}{},
	})
}

func (p *Portal) handleDocuments(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	docs := append([]models.DocumentSummary{}, p.documents...)
	p.mu.Unlock()
	respondJSON(w, http.StatusOK, docs)
}

func (p *Portal) handleStats(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	byDept := map[string]int{}
	byType := map[string]int{}
	byYear := map[string]int{}
	for _, d := range p.documents {
		byDept[orDefault(d.Department, "Unknown")]++
		byType[orDefault(d.Category, "Other")]++
		byYear[orDefault(d.Year.String(), "Unknown")]++
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total_documents":         len(p.documents),
		"total_users":             len(p.users),
		"documents_by_department": byDept,
		"documents_by_type":       byType,
		"documents_by_year":       byYear,
	})
}

func (p *Portal) handleFilters(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	depts := map[string]bool{}
	types := map[string]bool{}
	years := map[int]bool{}
	for _, d := range p.documents {
		if d.Department != "" {
			depts[d.Department] = true
		}
		if d.Category != "" {
			types[d.Category] = true
		}
		if d.Year.Known() {
			years[int(d.Year)] = true
		}
	}
	out := models.FilterOptions{Departments: sortedKeys(depts), DocumentTypes: sortedKeys(types), Years: []models.Year{}}
	for y := range years {
		out.Years = append(out.Years, models.Year(y))
	}
	sort.Slice(out.Years, func(i, j int) bool { return out.Years[i] > out.Years[j] })
	respondJSON(w, http.StatusOK, out)
}

func (p *Portal) handleUploads(w http.ResponseWriter, r *http.Request) {
	content, ok := p.Uploaded(chi.URLParam(r, "filename"))
	if !ok {
		respondDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
