// Package cli renders findly views to a terminal or a machine-readable stream.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/hyperjump/findly/internal/app"
	"github.com/hyperjump/findly/internal/auth"
	"github.com/hyperjump/findly/internal/models"
	"github.com/hyperjump/findly/internal/theme"
	"github.com/hyperjump/findly/internal/views"
	"github.com/hyperjump/findly/pkg/utils"
)

// OutputFormat is the rendering format.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one tab-separated line per item.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat returns the format named by s.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, compact or json)", s)
	}
}

// DemoHint is shown on the login view.
const DemoHint = "Demo account: admin@findly.com / admin123"

const summaryWidth = 200

// Renderer writes views to w.
type Renderer struct {
	w      io.Writer
	format OutputFormat
	p      theme.Palette
	link   func(filename string) string
}

// NewRenderer returns a renderer. link builds the retrieval link shown for each document; nil
// hides links.
func NewRenderer(w io.Writer, format OutputFormat, palette theme.Palette, link func(string) string) *Renderer {
	return &Renderer{w: w, format: format, p: palette, link: link}
}

// Render draws the active view of root.
func (r *Renderer) Render(root *app.Root) error {
	st := root.Snapshot()
	switch st.View {
	case models.ViewLogin:
		return r.Login()
	case models.ViewSearch:
		return r.Search(root.Search.State())
	case models.ViewUpload:
		return r.Upload(root.Upload.State())
	case models.ViewDocuments:
		return r.Documents(root.Documents.State())
	case models.ViewStats:
		return r.Stats(root.Stats.State())
	case models.ViewProfile:
		return r.Profile(root.Profile())
	default:
		return fmt.Errorf("cannot render view %q", st.View)
	}
}

// Login draws the signed-out view.
func (r *Renderer) Login() error {
	if r.format == OutputJSON {
		return r.json(map[string]string{"view": string(models.ViewLogin), "hint": DemoHint})
	}
	fmt.Fprintln(r.w, r.p.Heading.Sprint("Findly"))
	fmt.Fprintln(r.w, "You are not logged in. Run `findly login` or `findly signup`.")
	fmt.Fprintln(r.w, r.p.Muted.Sprint(DemoHint))
	return nil
}

// AuthResult reports the outcome of a login or signup submission.
func (r *Renderer) AuthResult(res auth.Result, err error) error {
	if r.format == OutputJSON {
		out := map[string]interface{}{"ok": err == nil}
		if err != nil {
			out["error"] = auth.Message(err)
		}
		if res.Notice != "" {
			out["notice"] = res.Notice
		}
		if res.Session != nil {
			out["user"] = res.Session.User
		}
		return r.json(out)
	}
	switch {
	case err != nil:
		fmt.Fprintln(r.w, r.p.Error.Sprint(auth.Message(err)))
	case res.Session != nil:
		fmt.Fprintf(r.w, "%s Logged in as %s (%s)\n", r.p.Success.Sprint("✓"), res.Session.User.Name, res.Session.User.Role.Title())
	case res.Notice != "":
		fmt.Fprintln(r.w, r.p.Success.Sprint(res.Notice))
	}
	return nil
}

type searchJSON struct {
	Query         string                     `json:"query"`
	Total         int                        `json:"total"`
	Results       []models.DocumentSummary   `json:"results"`
	Understanding *models.QueryUnderstanding `json:"query_understanding,omitempty"`
	Filters       *models.SearchFilters      `json:"filters,omitempty"`
	Failed        bool                       `json:"failed,omitempty"`
}

// Search draws the search view.
func (r *Renderer) Search(st views.SearchState) error {
	switch r.format {
	case OutputJSON:
		return r.json(searchJSON{
			Query: st.Query, Total: st.Total, Results: st.Results,
			Understanding: st.Understanding, Filters: st.Filters, Failed: st.Failed,
		})
	case OutputCompact:
		r.compactDocuments(st.Results)
		return nil
	}
	if st.Loading {
		fmt.Fprintln(r.w, r.p.Muted.Sprint("Searching..."))
		return nil
	}
	if !st.Searched {
		fmt.Fprintln(r.w, "Ask for documents in plain language, e.g. \"CSE question papers from 2023\".")
		return nil
	}
	if u := st.Understanding; u != nil {
		var parts []string
		if u.ExtractedYear.Known() {
			parts = append(parts, "year "+u.ExtractedYear.String())
		}
		if u.ExtractedDepartment != "" {
			parts = append(parts, "department "+u.ExtractedDepartment)
		}
		if u.ExtractedType != "" {
			parts = append(parts, "type "+u.ExtractedType)
		}
		fmt.Fprintf(r.w, "%s %s\n", r.p.Accent.Sprint("AI understood:"), strings.Join(parts, ", "))
	}
	if len(st.Results) == 0 {
		fmt.Fprintln(r.w, r.p.Muted.Sprint("No documents found. Try a different query."))
		return nil
	}
	fmt.Fprintf(r.w, "\nFound %d documents\n\n", st.Total)
	for _, d := range st.Results {
		r.documentCard(d)
	}
	return nil
}

// Filters draws the available filter values.
func (r *Renderer) Filters(opts *models.FilterOptions) error {
	if opts == nil {
		opts = &models.FilterOptions{}
	}
	if r.format == OutputJSON {
		return r.json(opts)
	}
	years := make([]string, 0, len(opts.Years))
	for _, y := range opts.Years {
		if y.Known() {
			years = append(years, y.String())
		}
	}
	rows := [][2]string{
		{"Departments", strings.Join(opts.Departments, ", ")},
		{"Years", strings.Join(years, ", ")},
		{"Document types", strings.Join(opts.DocumentTypes, ", ")},
	}
	for _, row := range rows {
		if r.format == OutputCompact {
			fmt.Fprintf(r.w, "%s\t%s\n", strings.ToLower(strings.ReplaceAll(row[0], " ", "_")), row[1])
			continue
		}
		fmt.Fprintf(r.w, "%s: %s\n", r.p.Heading.Sprint(row[0]), orDash(row[1]))
	}
	return nil
}

// Documents draws the documents listing.
func (r *Renderer) Documents(st views.LoadState[[]models.DocumentSummary]) error {
	switch r.format {
	case OutputJSON:
		return r.json(st.Data)
	case OutputCompact:
		r.compactDocuments(st.Data)
		return nil
	}
	if st.Loading {
		fmt.Fprintln(r.w, r.p.Muted.Sprint("Loading documents..."))
		return nil
	}
	fmt.Fprintf(r.w, "%s  %s\n\n", r.p.Heading.Sprint("All Documents"), r.p.Muted.Sprintf("%d documents", len(st.Data)))
	for _, d := range st.Data {
		r.documentCard(d)
	}
	return nil
}

// Stats draws the statistics view.
func (r *Renderer) Stats(st views.LoadState[models.Stats]) error {
	s := st.Data
	switch r.format {
	case OutputJSON:
		return r.json(s)
	case OutputCompact:
		fmt.Fprintf(r.w, "total_documents\t%d\ntotal_users\t%d\n", s.TotalDocuments, s.TotalUsers)
		for _, g := range []struct {
			name string
			m    map[string]int
		}{{"department", s.DocumentsByDepartment}, {"type", s.DocumentsByType}, {"year", s.DocumentsByYear}} {
			for _, k := range sortedKeys(g.m) {
				fmt.Fprintf(r.w, "%s\t%s\t%d\n", g.name, k, g.m[k])
			}
		}
		return nil
	}
	if st.Loading {
		fmt.Fprintln(r.w, r.p.Muted.Sprint("Loading statistics..."))
		return nil
	}
	fmt.Fprintln(r.w, r.p.Heading.Sprint("Platform Statistics"))
	fmt.Fprintf(r.w, "Total documents: %s\n", r.p.Accent.Sprint(s.TotalDocuments))
	fmt.Fprintf(r.w, "Total users:     %s\n", r.p.Accent.Sprint(s.TotalUsers))
	r.breakdown("By Department", s.DocumentsByDepartment)
	r.breakdown("By Type", s.DocumentsByType)
	if len(s.DocumentsByYear) > 0 {
		r.breakdown("By Year", s.DocumentsByYear)
	}
	return nil
}

// Upload draws the upload view.
func (r *Renderer) Upload(st views.UploadState) error {
	if r.format != OutputText {
		return r.uploadOutcome(st.Outcome)
	}
	switch {
	case st.Uploading:
		fmt.Fprintln(r.w, r.p.Muted.Sprint("Uploading & Processing..."))
		return nil
	case st.Selected != nil:
		fmt.Fprintf(r.w, "Selected: %s (%s)\n", r.p.Accent.Sprint(st.Selected.Name), utils.FormatSize(st.Selected.Size))
		if w := views.AdvisoryWarning(*st.Selected); w != "" {
			fmt.Fprintln(r.w, r.p.Muted.Sprint("Note: "+w))
		}
	case st.Outcome == nil:
		fmt.Fprintln(r.w, "Choose a PDF or DOCX file (Max 10MB).")
	}
	return r.uploadOutcome(st.Outcome)
}

func (r *Renderer) uploadOutcome(o models.UploadOutcome) error {
	switch v := o.(type) {
	case nil:
		if r.format == OutputJSON {
			return r.json(map[string]interface{}{"ok": false})
		}
	case models.UploadSuccess:
		switch r.format {
		case OutputJSON:
			return r.json(map[string]interface{}{"ok": true, "result": v})
		case OutputCompact:
			fmt.Fprintf(r.w, "ok\t%s\t%s\n", v.Category, utils.OneLine(v.Summary))
			return nil
		}
		fmt.Fprintln(r.w, r.p.Success.Sprint("Upload Successful!"))
		fmt.Fprintf(r.w, "Category: %s\n", v.Category)
		fmt.Fprintf(r.w, "AI Summary:\n%s\n", v.Summary)
		if m := v.Metadata; m != nil {
			var tags []string
			if m.Department != "" {
				tags = append(tags, "department "+m.Department)
			}
			if m.Year.Known() {
				tags = append(tags, "year "+m.Year.String())
			}
			tags = append(tags, m.Tags...)
			if len(tags) > 0 {
				fmt.Fprintln(r.w, r.p.Tag.Sprint(strings.Join(tags, " · ")))
			}
		}
	case models.UploadFailure:
		switch r.format {
		case OutputJSON:
			return r.json(map[string]interface{}{"ok": false, "error": v.ErrorMessage})
		case OutputCompact:
			fmt.Fprintf(r.w, "failed\t%s\n", v.ErrorMessage)
			return nil
		}
		fmt.Fprintln(r.w, r.p.Error.Sprint(v.ErrorMessage))
	}
	return nil
}

type profileJSON struct {
	Name     string `json:"name"`
	Initial  string `json:"initial"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Branch   string `json:"branch,omitempty"`
	Semester string `json:"semester,omitempty"`
}

// Profile draws the profile view.
func (r *Renderer) Profile(v views.ProfileView) error {
	if r.format == OutputJSON {
		out := profileJSON{Name: v.DisplayName, Initial: v.Initial, Role: v.RoleTitle, Email: v.Email}
		if v.StudentFields {
			out.Branch, out.Semester = v.Branch, v.Semester
		}
		return r.json(out)
	}
	rows := [][2]string{
		{"Name", v.DisplayName},
		{"Email", v.Email},
		{"Role", v.RoleTitle},
	}
	if v.StudentFields {
		rows = append(rows, [2]string{"Branch", v.Branch}, [2]string{"Semester", v.Semester})
	}
	if r.format == OutputCompact {
		for _, row := range rows {
			fmt.Fprintf(r.w, "%s\t%s\n", strings.ToLower(row[0]), row[1])
		}
		return nil
	}
	fmt.Fprintf(r.w, "%s  %s\n", r.p.Accent.Sprintf("[%s]", v.Initial), r.p.Heading.Sprint(v.DisplayName))
	for _, row := range rows {
		fmt.Fprintf(r.w, "  %-9s %s\n", row[0]+":", row[1])
	}
	return nil
}

// Message prints a one-line status, such as a health check or theme change.
func (r *Renderer) Message(key, text string) error {
	switch r.format {
	case OutputJSON:
		return r.json(map[string]string{key: text})
	case OutputCompact:
		fmt.Fprintf(r.w, "%s\t%s\n", key, text)
	default:
		fmt.Fprintln(r.w, text)
	}
	return nil
}

func (r *Renderer) documentCard(d models.DocumentSummary) {
	fmt.Fprintln(r.w, r.p.Muted.Sprint(strings.Repeat("─", 57)))
	fmt.Fprintf(r.w, "%s  %s\n", r.p.Accent.Sprint(d.Filename), r.p.Tag.Sprintf("[%s]", d.CategoryOr("Uncategorized")))
	if d.Summary != "" {
		fmt.Fprintln(r.w, utils.Truncate(utils.OneLine(d.Summary), summaryWidth))
	}
	var meta []string
	if d.Department != "" {
		meta = append(meta, "department "+d.Department)
	}
	if d.Year.Known() {
		meta = append(meta, "year "+d.Year.String())
	}
	if d.Uploader != "" {
		meta = append(meta, "by "+d.Uploader)
	}
	if d.Timestamp != "" {
		meta = append(meta, formatDate(d.Timestamp))
	}
	if len(meta) > 0 {
		fmt.Fprintln(r.w, r.p.Muted.Sprint(strings.Join(meta, " · ")))
	}
	if len(d.Tags) > 0 {
		fmt.Fprintln(r.w, r.p.Tag.Sprint("#"+strings.Join(d.Tags, " #")))
	}
	if r.link != nil {
		fmt.Fprintf(r.w, "Open: %s\n", r.link(d.Filename))
	}
	fmt.Fprintln(r.w)
}

func (r *Renderer) compactDocuments(docs []models.DocumentSummary) {
	for _, d := range docs {
		fmt.Fprintf(r.w, "%s\t%s\t%s\t%s\n", d.Filename, d.CategoryOr("Uncategorized"), orDash(d.Department), orDash(d.Year.String()))
	}
}

func (r *Renderer) breakdown(title string, m map[string]int) {
	fmt.Fprintf(r.w, "\n%s\n", r.p.Heading.Sprint(title))
	if len(m) == 0 {
		fmt.Fprintln(r.w, r.p.Muted.Sprint("  none"))
		return
	}
	for _, k := range sortedKeys(m) {
		fmt.Fprintf(r.w, "  %-20s %s\n", k, r.p.Tag.Sprint(m[k]))
	}
}

func (r *Renderer) json(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// sortedKeys orders by count descending, then name.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"}

func formatDate(ts string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ts
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
