package views

import (
	"context"
	"sync"

	"github.com/hyperjump/findly/internal/models"
	"go.uber.org/zap"
)

// SearchAPI is the part of the portal client used by the search view.
type SearchAPI interface {
	ChatSearch(ctx context.Context, token string, req models.SearchRequest) (*models.SearchResponse, error)
	Filters(ctx context.Context) (*models.FilterOptions, error)
}

// SearchState is what the search view shows.
type SearchState struct {
	Query         string
	Filters       *models.SearchFilters
	Options       *models.FilterOptions
	Results       []models.DocumentSummary
	Total         int
	Understanding *models.QueryUnderstanding
	Loading       bool
	// Searched is set once a query has completed, so an empty result can be told apart from
	// a view nobody has searched in yet.
	Searched bool
	Failed   bool
}

// Search is the adapter behind the search view.
type Search struct {
	api  SearchAPI
	opts options
	life lifetime

	mu      sync.Mutex
	seq     uint64
	filters *models.SearchFilters
	state   SearchState
}

// NewSearch returns a search adapter.
func NewSearch(api SearchAPI, opts ...Option) *Search {
	return &Search{api: api, opts: buildOptions(opts), state: SearchState{Results: []models.DocumentSummary{}}}
}

// Activate starts a new view lifetime.
func (s *Search) Activate() {
	s.life.activate()
}

// Deactivate ends the view lifetime. Responses still in flight are discarded.
func (s *Search) Deactivate() {
	s.life.deactivate()
}

// State returns a copy of the current state.
func (s *Search) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetFilters sets the explicit filters sent with the next query. nil clears them.
func (s *Search) SetFilters(f *models.SearchFilters) {
	s.mu.Lock()
	if f != nil && !f.IsZero() {
		cp := *f
		s.filters = &cp
	} else {
		s.filters = nil
	}
	s.state.Filters = s.filters
	s.mu.Unlock()
	s.opts.onChange()
}

// Search runs query. A blank query does nothing. Failures show an empty result set and are
// logged; they are never returned. When several searches overlap only the latest one is shown.
func (s *Search) Search(ctx context.Context, query string) SearchState {
	s.mu.Lock()
	req := models.SearchRequest{Query: query}
	if s.filters != nil {
		cp := *s.filters
		req.Filters = &cp
	}
	if err := req.Validate(); err != nil {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	gen := s.life.current()
	s.life.commit(gen, func() {
		s.mu.Lock()
		s.state.Query = req.Query
		s.state.Loading = true
		s.state.Failed = false
		s.mu.Unlock()
	})
	s.opts.onChange()

	next := SearchState{Query: req.Query, Filters: req.Filters, Results: []models.DocumentSummary{}, Searched: true}
	resp, err := s.api.ChatSearch(ctx, s.opts.token(), req)
	if err != nil {
		s.opts.logger.Warn("search failed", zap.String("query", req.Query), zap.Error(err))
		next.Failed = true
	} else {
		next.Results = resp.Results
		next.Total = resp.Total
		if next.Total < len(next.Results) {
			next.Total = len(next.Results)
		}
		next.Understanding = resp.QueryUnderstanding
	}

	applied := s.life.commit(gen, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if seq != s.seq {
			return
		}
		next.Options = s.state.Options
		s.state = next
	})
	if applied {
		s.opts.onChange()
	} else {
		s.opts.logger.Debug("discarded search response for inactive view", zap.String("query", req.Query))
	}
	return next
}

// LoadFilters fetches the available filter values.
func (s *Search) LoadFilters(ctx context.Context) (*models.FilterOptions, error) {
	gen := s.life.current()
	opts, err := s.api.Filters(ctx)
	if err != nil {
		s.opts.logger.Warn("failed to load filter options", zap.Error(err))
		return nil, err
	}
	if s.life.commit(gen, func() {
		s.mu.Lock()
		s.state.Options = opts
		s.mu.Unlock()
	}) {
		s.opts.onChange()
	}
	return opts, nil
}

// Reset clears the query, results and filters.
func (s *Search) Reset() {
	s.mu.Lock()
	s.seq++
	s.filters = nil
	s.state = SearchState{Results: []models.DocumentSummary{}}
	s.mu.Unlock()
	s.opts.onChange()
}
