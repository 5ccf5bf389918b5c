// Package auth builds login and signup requests, interprets the responses and establishes the
// session on successful login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/hyperjump/findly/internal/client"
	"github.com/hyperjump/findly/internal/models"
	"go.uber.org/zap"
)

// Mode selects the form being submitted.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

// API is the subset of the portal client the controller needs.
type API interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.LoginResponse, error)
	Signup(ctx context.Context, req client.SignupRequest) error
}

// SessionSaver persists an established session.
type SessionSaver interface {
	Save(ctx context.Context, token string, profile *models.UserProfile) error
}

// Form holds the auth form fields. Login uses Email and Password only; Branch and Semester
// are optional and only sent for students.
type Form struct {
	Name     string `validate:"required_if=Mode signup"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Role     string `validate:"required_if=Mode signup,omitempty,oneof=student teacher admin"`
	Branch   string
	Semester string

	// Mode is set by Submit so the conditional rules can see it.
	Mode Mode `validate:"-"`
}

// Result is the outcome of a successful submission.
type Result struct {
	// Session is set after a successful login.
	Session *models.Session
	// SwitchToLogin is set after a successful signup: the form should flip to login mode.
	SwitchToLogin bool
	// Notice is the non-error banner shown after signup.
	Notice string
}

// Success reports whether the result carries a success banner (the "created" class).
func (r Result) Success() bool {
	return strings.Contains(r.Notice, "created")
}

// Controller submits auth forms. At most one submission is in flight per controller.
type Controller struct {
	api      API
	sessions SessionSaver
	validate *validator.Validate
	logger   *zap.Logger
	busy     atomic.Bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController returns a controller that talks to api and saves sessions into sessions.
func NewController(api API, sessions SessionSaver, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		sessions: sessions,
		validate: validator.New(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Busy reports whether a submission is in flight.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Submit validates the form and dispatches it. A submission made while another is in flight
// returns ErrBusy and dispatches nothing.
func (c *Controller) Submit(ctx context.Context, mode Mode, form Form) (Result, error) {
	if mode != ModeLogin && mode != ModeSignup {
		return Result{}, fmt.Errorf("auth: unknown mode %q", mode)
	}
	form.Mode = mode
	form.Email = strings.TrimSpace(form.Email)
	form.Name = strings.TrimSpace(form.Name)
	if mode == ModeSignup && form.Role == "" {
		form.Role = string(models.RoleStudent)
	}
	if err := c.validateForm(form); err != nil {
		return Result{}, err
	}

	if !c.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer c.busy.Store(false)

	if mode == ModeLogin {
		return c.login(ctx, form)
	}
	return c.signup(ctx, form)
}

func (c *Controller) login(ctx context.Context, form Form) (Result, error) {
	resp, err := c.api.Login(ctx, client.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		c.logger.Debug("login failed", zap.String("email", form.Email), zap.Error(err))
		return Result{}, shapeError(err)
	}
	role, err := models.ParseRole(resp.Role)
	if err != nil {
		c.logger.Warn("login response has unknown role", zap.String("role", resp.Role))
		return Result{}, shapeError(&client.NetworkError{Op: "login", Err: err})
	}
	profile := &models.UserProfile{
		Name:     resp.Name,
		Role:     role,
		Email:    form.Email,
		Branch:   resp.Branch,
		Semester: resp.Semester,
	}
	session := models.NewSession(resp.AccessToken, profile)
	if err := c.sessions.Save(ctx, session.Token, session.User); err != nil {
		c.logger.Error("failed to persist session", zap.Error(err))
		return Result{}, fmt.Errorf("establish session: %w", err)
	}
	c.logger.Info("logged in", zap.String("email", form.Email), zap.String("role", string(role)))
	return Result{Session: &session}, nil
}

func (c *Controller) signup(ctx context.Context, form Form) (Result, error) {
	req := client.SignupRequest{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	}
	if form.Role == string(models.RoleStudent) {
		branch, semester := strings.TrimSpace(form.Branch), strings.TrimSpace(form.Semester)
		req.Branch = &branch
		req.Semester = &semester
	}
	if err := c.api.Signup(ctx, req); err != nil {
		c.logger.Debug("signup failed", zap.String("email", form.Email), zap.Error(err))
		return Result{}, shapeError(err)
	}
	c.logger.Info("account created", zap.String("email", form.Email), zap.String("role", form.Role))
	return Result{SwitchToLogin: true, Notice: MsgAccountCreated}, nil
}

func (c *Controller) validateForm(form Form) error {
	err := c.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Kind: KindValidation, Message: "Please fill in all required fields.", Err: err}
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required", "required_if":
		msg = fmt.Sprintf("%s is required.", fe.Field())
	case "email":
		msg = "Please enter a valid email address."
	case "oneof":
		msg = fmt.Sprintf("Role must be one of: %s.", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		msg = fmt.Sprintf("%s is invalid.", fe.Field())
	}
	return &Error{Kind: KindValidation, Message: msg, Err: err}
}
