package views

import (
	"context"
	"sync"

	"github.com/hyperjump/findly/internal/models"
	"go.uber.org/zap"
)

// LoadState is what a fetch-on-activate view shows.
type LoadState[T any] struct {
	Loading bool
	Data    T
	// Failed is set when the last fetch failed and Data is the empty value.
	Failed bool
}

// Loader fetches its data once per activation. There is no caching and no retry.
type Loader[T any] struct {
	name  string
	fetch func(ctx context.Context) (T, error)
	empty func() T
	opts  options
	life  lifetime

	mu    sync.Mutex
	state LoadState[T]
}

// DocumentsAPI lists documents.
type DocumentsAPI interface {
	Documents(ctx context.Context) ([]models.DocumentSummary, error)
}

// StatsAPI fetches statistics.
type StatsAPI interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// NewDocuments returns the adapter behind the documents view.
func NewDocuments(api DocumentsAPI, opts ...Option) *Loader[[]models.DocumentSummary] {
	return newLoader("documents", api.Documents, func() []models.DocumentSummary { return []models.DocumentSummary{} }, opts)
}

// NewStats returns the adapter behind the statistics view.
func NewStats(api StatsAPI, opts ...Option) *Loader[models.Stats] {
	fetch := func(ctx context.Context) (models.Stats, error) {
		s, err := api.Stats(ctx)
		if err != nil {
			return models.Stats{}, err
		}
		return *s, nil
	}
	return newLoader("stats", fetch, func() models.Stats { return models.Stats{} }, opts)
}

func newLoader[T any](name string, fetch func(context.Context) (T, error), empty func() T, opts []Option) *Loader[T] {
	return &Loader[T]{
		name:  name,
		fetch: fetch,
		empty: empty,
		opts:  buildOptions(opts),
		state: LoadState[T]{Data: empty()},
	}
}

// Activate starts a new lifetime and fetches once. The view shows Loading until the response
// resolves; a failure is logged and leaves the empty state.
func (l *Loader[T]) Activate(ctx context.Context) LoadState[T] {
	gen := l.life.activate()
	l.life.commit(gen, func() {
		l.mu.Lock()
		l.state = LoadState[T]{Loading: true, Data: l.empty()}
		l.mu.Unlock()
	})
	l.opts.onChange()

	next := LoadState[T]{Data: l.empty()}
	data, err := l.fetch(ctx)
	if err != nil {
		l.opts.logger.Warn("failed to fetch "+l.name, zap.Error(err))
		next.Failed = true
	} else {
		next.Data = data
	}

	if l.life.commit(gen, func() {
		l.mu.Lock()
		l.state = next
		l.mu.Unlock()
	}) {
		l.opts.onChange()
	} else {
		l.opts.logger.Debug("discarded "+l.name+" response for inactive view")
	}
	return next
}

// Deactivate ends the lifetime. A fetch still in flight will not update the state.
func (l *Loader[T]) Deactivate() {
	l.life.deactivate()
}

// State returns a copy of the current state.
func (l *Loader[T]) State() LoadState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
