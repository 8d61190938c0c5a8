// Package search drives the interactive search experience: debounced,
// cancellable suggestions feeding a filter and a paged result set.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/evcraddock/realty/internal/catalog"
	"github.com/evcraddock/realty/internal/property"
)

// State is where the session is in the search flow.
type State int

const (
	Idle State = iota
	Suggesting
	Filtered
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Suggesting:
		return "suggesting"
	case Filtered:
		return "filtered"
	}
	return "unknown"
}

// DefaultDebounce is the pause after a keystroke before suggestions are requested.
const DefaultDebounce = 300 * time.Millisecond

// Suggester produces suggestions for a query. It must honour ctx.
type Suggester interface {
	Suggest(ctx context.Context, q string) []string
}

// Result is the outcome of one Type call. Stale results were superseded
// by a later keystroke and have not been applied to the session.
type Result struct {
	Seq         uint64
	Query       string
	Suggestions []string
	Stale       bool
}

// View is a snapshot of the session for rendering.
type View struct {
	State       State
	Query       string
	Suggestions []string
	Loading     bool
	Filter      catalog.FilterState
	Page        int
}

// Session holds the state of one search experience. It is safe for
// concurrent use; the most recently issued Type wins.
type Session struct {
	suggester Suggester
	debounce  time.Duration
	pageSize  int

	mu          sync.Mutex
	state       State
	query       string
	suggestions []string
	loading     bool
	filter      catalog.FilterState
	page        int
	seq         uint64
	cancel      context.CancelFunc
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

// WithPageSize overrides catalog.DefaultPageSize.
func WithPageSize(n int) Option {
	return func(s *Session) { s.pageSize = n }
}

// New creates an idle session.
func New(suggester Suggester, opts ...Option) *Session {
	s := &Session{
		suggester:   suggester,
		debounce:    DefaultDebounce,
		pageSize:    catalog.DefaultPageSize,
		page:        1,
		suggestions: []string{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Type records new input text. Input shorter than catalog.MinSuggestLen
// clears suggestions at once. Otherwise Type waits for the debounce
// interval, cancels any earlier request and asks for suggestions; the
// answer is applied only if no later Type has been issued meanwhile.
func (s *Session) Type(ctx context.Context, text string) Result {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	s.cancelLocked()
	s.seq++
	seq := s.seq
	s.query = text

	if len([]rune(text)) < catalog.MinSuggestLen {
		s.suggestions = []string{}
		s.loading = false
		s.state = s.restingState()
		s.mu.Unlock()
		return Result{Seq: seq, Query: text, Suggestions: []string{}}
	}

	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	s.state = Suggesting
	s.mu.Unlock()
	defer cancel()

	if s.debounce > 0 {
		timer := time.NewTimer(s.debounce)
		select {
		case <-timer.C:
		case <-reqCtx.Done():
			timer.Stop()
			return s.finish(seq, text, nil)
		}
	}

	return s.finish(seq, text, s.suggester.Suggest(reqCtx, text))
}

func (s *Session) finish(seq uint64, text string, suggestions []string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		return Result{Seq: seq, Query: text, Suggestions: suggestions, Stale: true}
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	s.suggestions = suggestions
	s.loading = false
	s.cancel = nil
	return Result{Seq: seq, Query: text, Suggestions: suggestions}
}

// Submit makes text the search term and shows the first page of results.
func (s *Session) Submit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.seq++
	f := s.filter
	f.Search = strings.TrimSpace(text)
	s.query = f.Search
	s.suggestions = []string{}
	s.loading = false
	s.filter = f
	s.page = 1
	s.state = s.restingState()
}

// Select applies a chosen suggestion as the search term.
func (s *Session) Select(suggestion string) {
	s.Submit(suggestion)
}

// SetFilter replaces the filter. The page resets to 1 whenever the new
// filter selects a different set.
func (s *Session) SetFilter(f catalog.FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !f.Equal(s.filter) {
		s.page = 1
	}
	s.filter = f
	if s.state != Suggesting {
		s.state = s.restingState()
	}
}

// SetPage moves to page n. It is clamped when results are computed.
func (s *Session) SetPage(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		n = 1
	}
	s.page = n
}

// Results filters props with the current filter and returns the current
// page, storing the clamped page number.
func (s *Session) Results(props []property.Property) catalog.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := catalog.Paginate(catalog.Filter(props, s.filter), s.page, s.pageSize)
	s.page = p.Page
	return p
}

// Clear cancels any pending request and returns to Idle with no filter.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.seq++
	s.query = ""
	s.suggestions = []string{}
	s.loading = false
	s.filter = catalog.FilterState{}
	s.page = 1
	s.state = Idle
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		State:       s.state,
		Query:       s.query,
		Suggestions: append([]string{}, s.suggestions...),
		Loading:     s.loading,
		Filter:      s.filter,
		Page:        s.page,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) restingState() State {
	if s.filter.Active() {
		return Filtered
	}
	return Idle
}

func (s *Session) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
