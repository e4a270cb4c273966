package viewer

import (
	"context"
	"errors"
	"strings"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/highlight"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/search"
)

// Search starts a search in the background, cancelling any search still
// running. Results arrive as a SearchEvent; a blank query clears them.
func (s *Session) Search(query string, opts search.Options) error {
	return s.call(func() {
		if s.searchCancel != nil {
			s.searchCancel()
			s.searchCancel = nil
		}
		s.searchGen++
		s.searchOpts = opts

		if strings.TrimSpace(query) == "" {
			s.results = search.NewResults("", nil)
			s.emitSearch()
			return
		}

		ctx, cancel := context.WithCancel(s.ctx)
		s.searchCancel = cancel
		gen := s.searchGen
		s.spawn(func() {
			matches, err := s.searcher.Search(ctx, s.doc, query, opts)
			s.post(func() { s.searchDone(gen, query, matches, err) })
		})
	})
}

func (s *Session) searchDone(gen uint64, query string, matches []search.Match, err error) {
	if gen != s.searchGen {
		return
	}
	if s.searchCancel != nil {
		s.searchCancel()
		s.searchCancel = nil
	}
	if err != nil {
		if !errors.Is(err, pdf.ErrSearchCancelled) {
			s.logger.Error("search failed", observability.String("query", query), observability.Err(err))
		}
		return
	}

	s.results = search.NewResults(query, matches)
	s.logger.Debug("search finished", observability.String("query", query), observability.Int("matches", len(matches)))
	s.emitSearch()
	if m, ok := s.results.Current(); ok {
		s.emit(NavigateEvent{Page: m.Page})
	}
}

// NextMatch moves to the next match, wrapping around
func (s *Session) NextMatch() error {
	return s.call(func() {
		s.navigate(s.results.Next())
	})
}

// PreviousMatch moves to the previous match, wrapping around
func (s *Session) PreviousMatch() error {
	return s.call(func() {
		s.navigate(s.results.Previous())
	})
}

// SelectMatch makes match i current
func (s *Session) SelectMatch(i int) error {
	return s.call(func() {
		if s.results.Select(i) {
			s.navigate(s.results.Current())
		}
	})
}

func (s *Session) navigate(m search.Match, ok bool) {
	if !ok {
		return
	}
	s.emitSearch()
	s.emit(NavigateEvent{Page: m.Page})
}

// Matches returns the matches of the last search
func (s *Session) Matches() ([]search.Match, error) {
	var out []search.Match
	err := s.call(func() {
		out = append(out, s.results.Matches()...)
	})
	return out, err
}

// Highlights returns the screen rectangles of the search query on a 0-based
// page, scaled for the rasters currently rendered. The current match is
// flagged.
func (s *Session) Highlights(page int) ([]highlight.ScreenRect, error) {
	var (
		query   string
		match   pdf.MatchOptions
		opts    pdf.RenderOptions
		current int
	)
	err := s.call(func() {
		query = s.results.Query
		match = pdf.MatchOptions{MatchCase: s.searchOpts.MatchCase, WholeWord: s.searchOpts.WholeWord}
		opts = s.opts
		current = s.results.CurrentOnPage(page)
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	// text extraction may be slow, so it runs on the caller's goroutine
	return s.mapper.PageHighlights(s.doc, query, match, page, opts, current), nil
}

func (s *Session) emitSearch() {
	s.emit(s.searchEvent())
}

func (s *Session) searchEvent() SearchEvent {
	return SearchEvent{
		Query:         s.results.Query,
		Status:        s.results.Status(),
		Count:         s.results.Len(),
		Current:       s.results.Index(),
		MatchesOnPage: s.results.CountForPage(s.sched.Current()),
	}
}
