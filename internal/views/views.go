// Package views holds the data adapters behind each authenticated view. Adapters issue requests,
// map responses into view state and notify an observer when that state changes. They share
// nothing with each other; the session token is handed in by the caller.
package views

import (
	"sync"

	"go.uber.org/zap"
)

// Option configures an adapter.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	onChange func()
	token    func() string
}

// WithLogger sets the logger for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithOnChange registers fn to be called after every state change.
func WithOnChange(fn func()) Option {
	return func(o *options) { o.onChange = fn }
}

// WithToken sets the source of the bearer token forwarded on requests that accept one.
func WithToken(fn func() string) Option {
	return func(o *options) { o.token = fn }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop(), onChange: func() {}, token: func() string { return "" }}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// lifetime ties responses to the activation that requested them. Each Activate or Deactivate
// starts a new generation and a response may only touch state while its generation is current.
type lifetime struct {
	mu     sync.Mutex
	gen    uint64
	active bool
}

func (l *lifetime) activate() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.active = true
	return l.gen
}

func (l *lifetime) deactivate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.active = false
}

// current returns the generation to tag a request with. An adapter used without ever being
// activated starts its first lifetime here; a deactivated one stays closed until Activate.
func (l *lifetime) current() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen == 0 {
		l.gen = 1
		l.active = true
	}
	return l.gen
}

func (l *lifetime) live(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active && l.gen == gen
}

// commit runs fn only while gen is current. Deactivate cannot interleave with fn.
func (l *lifetime) commit(gen uint64, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.active || l.gen != gen {
		return false
	}
	fn()
	return true
}
