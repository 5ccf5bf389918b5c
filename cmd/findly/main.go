// Package main is the findly CLI entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/hyperjump/findly/internal/app"
	"github.com/hyperjump/findly/internal/auth"
	"github.com/hyperjump/findly/internal/cli"
	"github.com/hyperjump/findly/internal/client"
	"github.com/hyperjump/findly/internal/config"
	"github.com/hyperjump/findly/internal/models"
	"github.com/hyperjump/findly/internal/storage"
	"github.com/hyperjump/findly/internal/theme"
	"github.com/hyperjump/findly/internal/views"
	"github.com/hyperjump/findly/internal/watcher"
	"github.com/hyperjump/findly/pkg/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var version = "dev"

const defaultConfigPath = "~/.config/findly/config.yaml"

var (
	errNotLoggedIn = errors.New("not logged in; run `findly login` first")
	// errReported means the failure was already printed in the command's own output.
	errReported = errors.New("reported")
	errUsage    = errors.New("usage")
)

type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development), then at the default location, and
// falls back to built-in defaults when neither exists.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	resolved := expandHome(path)
	if path == defaultConfigPath {
		if _, err := os.Stat(resolved); errors.Is(err, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(resolved)
	if err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/"))
}

func main() {
	os.Exit(run(os.Args[1:], stdio{in: os.Stdin, out: os.Stdout, err: os.Stderr}))
}

func run(args []string, std stdio) int {
	if len(args) < 1 {
		printUsage(std.err)
		return 1
	}
	ctx := context.Background()
	rest := args[1:]
	var err error
	switch args[0] {
	case "login":
		err = runLogin(ctx, rest, std)
	case "signup":
		err = runSignup(ctx, rest, std)
	case "logout":
		err = runLogout(ctx, rest, std)
	case "whoami", "profile":
		err = runProfile(ctx, rest, std)
	case "search":
		err = runSearch(ctx, rest, std)
	case "filters":
		err = runFilters(ctx, rest, std)
	case "upload":
		err = runUpload(ctx, rest, std)
	case "documents", "docs":
		err = runLoaderView(ctx, "documents", models.ViewDocuments, rest, std)
	case "stats":
		err = runLoaderView(ctx, "stats", models.ViewStats, rest, std)
	case "open":
		err = runOpen(ctx, rest, std)
	case "theme":
		err = runTheme(ctx, rest, std)
	case "watch":
		err = runWatch(ctx, rest, std)
	case "status":
		err = runStatus(ctx, rest, std)
	case "config":
		err = runConfig(rest, std)
	case "version", "--version", "-v":
		fmt.Fprintf(std.out, "findly version %s\n", version)
	case "help", "--help", "-h":
		printUsage(std.out)
	default:
		fmt.Fprintf(std.err, "Unknown command: %s\n", args[0])
		printUsage(std.err)
		return 1
	}
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintf(std.err, "Command failed: %v\n", err)
		return 1
	}
}

// commonFlags are accepted by every command that talks to the portal.
type commonFlags struct {
	config  *string
	output  *string
	debug   *bool
	noColor *bool
}

func newFlagSet(name string, std stdio) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(std.err)
	return fs, &commonFlags{
		config:  fs.String("config", defaultConfigPath, "config file path"),
		output:  fs.String("output", "", "output format: text, compact or json (default from config)"),
		debug:   fs.Bool("debug", false, "enable debug logging"),
		noColor: fs.Bool("no-color", false, "disable coloured output"),
	}
}

// env is the wired application for one command invocation.
type env struct {
	cfg      *config.Config
	cfgPath  string
	logger   *zap.Logger
	kv       *storage.SQLiteKV
	api      *client.Client
	root     *app.Root
	format   cli.OutputFormat
	colorize bool
	out      io.Writer
}

func (c *commonFlags) open(ctx context.Context, std stdio) (*env, error) {
	cfg, cfgPath, err := loadConfig(*c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || *c.debug
	var logOpts []utils.LoggerOption
	if !debugMode {
		// Keep the terminal for view output; only problems reach stderr.
		logOpts = append(logOpts, utils.WithConsoleLevel(zapcore.WarnLevel))
	}
	logger, err := utils.NewLogger(debugMode, utils.LogFile{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}, logOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("config loaded", zap.String("config_path", cfgPath), zap.String("base_url", cfg.API.BaseURL))

	formatName := cfg.Output.Format
	if *c.output != "" {
		formatName = *c.output
	}
	format, err := cli.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	kv, err := storage.NewSQLiteKV(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state: %w", err)
	}
	api := client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithLogger(logger.Named("client")),
	)
	root := app.New(api, kv, app.WithLogger(logger), app.WithDocument(theme.NewDocument()))
	root.Boot(ctx)

	return &env{
		cfg:      cfg,
		cfgPath:  cfgPath,
		logger:   logger,
		kv:       kv,
		api:      api,
		root:     root,
		format:   format,
		colorize: format == cli.OutputText && cfg.Output.ColorOrDefault() && !*c.noColor && !color.NoColor && std.out == os.Stdout,
		out:      std.out,
	}, nil
}

func (e *env) Close() {
	_ = e.kv.Close()
	_ = e.logger.Sync()
}

// renderer is rebuilt per use so the palette follows the current dark class.
func (e *env) renderer() *cli.Renderer {
	return cli.NewRenderer(e.out, e.format, e.root.Document().Palette(e.colorize), e.api.DocumentURL)
}

func (e *env) requireSession() error {
	if !e.root.Snapshot().Session.Present() {
		return errNotLoggedIn
	}
	return nil
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return errUsage
	}
	return nil
}

// prompt reads a line from in when value is empty.
func prompt(r *bufio.Reader, out io.Writer, label, value string) string {
	if value != "" || r == nil {
		return value
	}
	fmt.Fprintf(out, "%s: ", label)
	line, _ := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func runLogin(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("login", std)
	email := fs.String("email", "", "account email (prompted when empty)")
	password := fs.String("password", "", "account password (prompted when empty)")
	if err := parse(fs, args); err != nil {
		return err
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()

	in := bufio.NewReader(std.in)
	form := auth.Form{
		Email:    prompt(in, std.err, "Email", *email),
		Password: prompt(in, std.err, "Password", *password),
	}
	res, err := e.root.SubmitAuth(ctx, auth.ModeLogin, form)
	if rerr := e.renderer().AuthResult(res, err); rerr != nil {
		return rerr
	}
	if err != nil {
		return errReported
	}
	return nil
}

func runSignup(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("signup", std)
	name := fs.String("name", "", "full name (prompted when empty)")
	email := fs.String("email", "", "account email (prompted when empty)")
	password := fs.String("password", "", "account password (prompted when empty)")
	role := fs.String("role", string(models.RoleStudent), "role: student, teacher or admin")
	branch := fs.String("branch", "", "branch (students only)")
	semester := fs.String("semester", "", "semester (students only)")
	if err := parse(fs, args); err != nil {
		return err
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()

	in := bufio.NewReader(std.in)
	form := auth.Form{
		Name:     prompt(in, std.err, "Name", *name),
		Email:    prompt(in, std.err, "Email", *email),
		Password: prompt(in, std.err, "Password", *password),
		Role:     *role,
		Branch:   *branch,
		Semester: *semester,
	}
	res, err := e.root.SubmitAuth(ctx, auth.ModeSignup, form)
	if rerr := e.renderer().AuthResult(res, err); rerr != nil {
		return rerr
	}
	if err != nil {
		return errReported
	}
	return nil
}

func runLogout(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("logout", std)
	if err := parse(fs, args); err != nil {
		return err
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.root.Logout(ctx); err != nil {
		return err
	}
	return e.renderer().Message("status", "Logged out.")
}

func runProfile(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("profile", std)
	if err := parse(fs, args); err != nil {
		return err
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.requireSession(); err != nil {
		return err
	}
	if _, err := e.root.Navigate(ctx, models.ViewProfile); err != nil {
		return err
	}
	return e.renderer().Render(e.root)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: findly search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
The portal reads years, departments and document types from the query itself; the flags add
explicit filters on top.

Examples:
  findly search CSE question papers from 2023
  findly search "dbms notes"                      # same as without quotes
  findly search --department ECE --year 2022 notes
  findly search --output json lab manuals         # structured JSON for other apps
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so `findly search notes -year 2023`
// would otherwise leave -year unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("search", std)
	year := fs.Int("year", 0, "only documents from this year")
	department := fs.String("department", "", "only documents from this department")
	docType := fs.String("type", "", "only documents of this type (e.g. \"Question Paper\")")
	fs.Usage = func() { printSearchUsage(fs) }
	if err := parse(fs, searchArgsReorder(args)); err != nil {
		return err
	}
	query := buildSearchQuery(fs.Args())
	if query == "" {
		printSearchUsage(fs)
		return errUsage
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.requireSession(); err != nil {
		return err
	}
	if _, err := e.root.Navigate(ctx, models.ViewSearch); err != nil {
		return err
	}
	e.root.Search.SetFilters(&models.SearchFilters{Year: *year, Department: *department, DocumentType: *docType})
	e.root.Search.Search(ctx, query)
	return e.renderer().Render(e.root)
}

func runFilters(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("filters", std)
	if err := parse(fs, args); err != nil {
		return err
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.requireSession(); err != nil {
		return err
	}
	opts, err := e.root.Search.LoadFilters(ctx)
	if err != nil {
		return fmt.Errorf("load filters: %w", err)
	}
	return e.renderer().Filters(opts)
}

func runUpload(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("upload", std)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: findly upload [flags] <file>...\n\n")
		fs.PrintDefaults()
	}
	if err := parse(fs, searchArgsReorder(args)); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errUsage
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.requireSession(); err != nil {
		return err
	}
	if _, err := e.root.Navigate(ctx, models.ViewUpload); err != nil {
		return err
	}

	failed := 0
	for _, path := range fs.Args() {
		ok, err := uploadPath(ctx, e, path)
		if err != nil {
			return err
		}
		if !ok {
			failed++
		}
	}
	if failed > 0 {
		return errReported
	}
	return nil
}

// uploadPath selects and uploads one file and renders the outcome.
func uploadPath(ctx context.Context, e *env, path string) (bool, error) {
	f, err := views.FileFromPath(path)
	if err != nil {
		return false, err
	}
	e.root.Upload.Select(f)
	if e.format == cli.OutputText {
		if err := e.renderer().Upload(e.root.Upload.State()); err != nil {
			return false, err
		}
	}
	outcome, err := e.root.UploadSelected(ctx)
	if err != nil {
		return false, err
	}
	if err := e.renderer().Upload(e.root.Upload.State()); err != nil {
		return false, err
	}
	return outcome.Succeeded(), nil
}

func runLoaderView(ctx context.Context, name string, view models.ActiveView, args []string, std stdio) error {
	fs, common := newFlagSet(name, std)
	if err := parse(fs, args); err != nil {
		return err
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.requireSession(); err != nil {
		return err
	}
	if _, err := e.root.Navigate(ctx, view); err != nil {
		return err
	}
	return e.renderer().Render(e.root)
}

func runOpen(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("open", std)
	if err := parse(fs, searchArgsReorder(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(std.err, "Usage: findly open <filename>")
		return errUsage
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()
	return e.renderer().Message("url", e.api.DocumentURL(fs.Arg(0)))
}

func runTheme(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("theme", std)
	if err := parse(fs, searchArgsReorder(args)); err != nil {
		return err
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()

	mode := "toggle"
	if fs.NArg() > 0 {
		mode = fs.Arg(0)
	}
	switch mode {
	case "toggle":
		_, err = e.root.ToggleDarkMode(ctx)
	case "dark", "on":
		err = e.root.SetDarkMode(ctx, true)
	case "light", "off":
		err = e.root.SetDarkMode(ctx, false)
	case "show":
	default:
		fmt.Fprintln(std.err, "Usage: findly theme [toggle|dark|light|show]")
		return errUsage
	}
	if err != nil {
		return err
	}
	text := "Light mode"
	if e.root.Snapshot().DarkMode {
		text = "Dark mode"
	}
	return e.renderer().Message("theme", text)
}

func runWatch(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("watch", std)
	recursive := fs.Bool("recursive", false, "also watch subdirectories (default from config)")
	syncExisting := fs.Bool("sync", true, "upload matching files already in the directory")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: findly watch [flags] <dir>\n\nUploads PDF and DOCX files as they appear in <dir>.\n\n")
		fs.PrintDefaults()
	}
	if err := parse(fs, searchArgsReorder(args)); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()
	if err := e.requireSession(); err != nil {
		return err
	}
	if !flagSet(fs, "recursive") {
		*recursive = e.cfg.Watch.RecursiveOrDefault()
	}
	if _, err := e.root.Navigate(ctx, models.ViewUpload); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ready := make(chan string, 64)
	w := watcher.New(fs.Arg(0), e.cfg.Watch.Extensions, *recursive,
		func(path string) {
			select {
			case ready <- path:
			case <-ctx.Done():
			}
		},
		watcher.WithLogger(e.logger.Named("watcher")),
	)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()
	if *syncExisting {
		go w.SyncExistingFiles()
	}
	fmt.Fprintf(std.err, "Watching %s for %s (Ctrl+C to stop)\n", w.Root(), strings.Join(e.cfg.Watch.Extensions, ", "))

	for {
		select {
		case <-ctx.Done():
			return nil
		case path := <-ready:
			if _, err := uploadPath(ctx, e, path); err != nil {
				e.logger.Warn("watch upload failed", zap.String("path", path), zap.Error(err))
			}
		}
	}
}

func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

type statusReport struct {
	Portal     string `json:"portal"`
	Reachable  bool   `json:"reachable"`
	Message    string `json:"message,omitempty"`
	LoggedIn   bool   `json:"logged_in"`
	User       string `json:"user,omitempty"`
	Role       string `json:"role,omitempty"`
	DarkMode   bool   `json:"dark_mode"`
	ConfigPath string `json:"config_path,omitempty"`
	StatePath  string `json:"state_path"`
}

func runStatus(ctx context.Context, args []string, std stdio) error {
	fs, common := newFlagSet("status", std)
	if err := parse(fs, args); err != nil {
		return err
	}
	e, err := common.open(ctx, std)
	if err != nil {
		return err
	}
	defer e.Close()

	st := e.root.Snapshot()
	report := statusReport{
		Portal:     e.api.BaseURL(),
		LoggedIn:   st.Session.Present(),
		DarkMode:   st.DarkMode,
		ConfigPath: e.cfgPath,
		StatePath:  e.cfg.State.Path,
	}
	if st.Session.Present() {
		report.User = st.Session.User.Email
		report.Role = string(st.Session.User.Role)
	}
	msg, healthErr := e.api.Health(ctx)
	report.Reachable = healthErr == nil
	report.Message = msg
	if healthErr != nil {
		report.Message = healthErr.Error()
	}

	switch e.format {
	case cli.OutputJSON:
		enc := json.NewEncoder(e.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	case cli.OutputCompact:
		fmt.Fprintf(e.out, "portal\t%s\nreachable\t%t\nlogged_in\t%t\ndark_mode\t%t\n",
			report.Portal, report.Reachable, report.LoggedIn, report.DarkMode)
	default:
		fmt.Fprintf(e.out, "portal:       %s\n", report.Portal)
		fmt.Fprintf(e.out, "reachable:    %t   # %s\n", report.Reachable, report.Message)
		if report.LoggedIn {
			fmt.Fprintf(e.out, "logged_in:    true   # %s (%s)\n", report.User, report.Role)
		} else {
			fmt.Fprintf(e.out, "logged_in:    false\n")
		}
		fmt.Fprintf(e.out, "dark_mode:    %t\n", report.DarkMode)
		if report.ConfigPath != "" {
			fmt.Fprintf(e.out, "config_path:  %s\n", report.ConfigPath)
		}
		fmt.Fprintf(e.out, "state_path:   %s\n", report.StatePath)
	}
	if healthErr != nil {
		return errReported
	}
	return nil
}

func runConfig(args []string, std stdio) error {
	if len(args) < 1 {
		fmt.Fprintln(std.err, "Usage: findly config <init|show> [flags]")
		return errUsage
	}
	fs := flag.NewFlagSet("config "+args[0], flag.ContinueOnError)
	fs.SetOutput(std.err)
	path := fs.String("config", defaultConfigPath, "config file path")
	force := fs.Bool("force", false, "overwrite an existing file (init)")
	if err := parse(fs, args[1:]); err != nil {
		return err
	}
	switch args[0] {
	case "init":
		target := expandHome(*path)
		if _, err := os.Stat(target); err == nil && !*force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", target)
		}
		if err := config.Save(target, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(std.out, "Wrote %s\n", target)
		return nil
	case "show":
		cfg, resolved, err := loadConfig(*path)
		if err != nil {
			return err
		}
		if resolved == "" {
			resolved = "built-in defaults"
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(std.out, "# %s\n%s", resolved, data)
		return nil
	default:
		fmt.Fprintf(std.err, "Unknown config subcommand: %s\n", args[0])
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `findly - command-line client for the Findly document portal

Usage:
  findly login [flags]              Log in and remember the session
  findly signup [flags]             Create an account
  findly logout                     Forget the session
  findly whoami                     Show the logged-in profile
  findly search [flags] <query>     Search documents in plain language
  findly filters                    List departments, years and document types
  findly upload <file>...           Upload PDF or DOCX documents
  findly documents                  List all documents
  findly stats                      Show platform statistics
  findly open <filename>            Print the retrieval link for a document
  findly theme [toggle|dark|light]  Switch the colour theme
  findly watch [flags] <dir>        Upload files as they appear in a directory
  findly status                     Show portal reachability and local state
  findly config <init|show>         Write or print the configuration
  findly version                    Show version
  findly help                       Show this help

Common Flags:
  --config string    Config file path (default: ~/.config/findly/config.yaml, or ./config.yaml when present)
  --output string    Output format: text, compact or json (default from config, or text)
  --debug            Enable debug logging
  --no-color         Disable coloured output

Login / Signup Flags:
  --email, --password            Prompted when omitted
  --name, --role                 Signup only (role: student, teacher or admin; default student)
  --branch, --semester           Signup only, sent for students

Search Flags:
  --year int           Only documents from this year
  --department string  Only documents from this department
  --type string        Only documents of this type

Watch Flags:
  --recursive          Also watch subdirectories (default from config)
  --sync               Upload matching files already present (default: true)

Environment:
  FINDLY_BASE_URL, FINDLY_STATE_PATH, FINDLY_DEBUG, FINDLY_LOG_FILE override the config file;
  a .env file next to the config or in the working directory is read too.

Examples:
  findly login --email admin@findly.com --password admin123
  findly search CSE question papers from 2023
  findly search --output json "dbms notes"
  findly upload ~/Downloads/dbms-unit1.pdf
  findly watch ~/Findly/inbox
  findly theme dark`)
}
