package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
)

// ContextChars is the number of characters shown on each side of a match
const ContextChars = 50

// Source is what a search reads from
type Source interface {
	pdf.TextLayer
	PageCount() int
}

// Options controls matching and the page range searched
type Options struct {
	MatchCase bool
	WholeWord bool
	StartPage int // 0-based, inclusive
	EndPage   int // 0-based, exclusive; 0 means through the last page
}

// Match is one occurrence of the query
type Match struct {
	Page    int // 0-based
	Start   int // byte offset into the page text
	Length  int
	Text    string
	Snippet string
	Rects   []pdf.DocumentRect
}

// Searcher scans a document page by page
type Searcher struct {
	logger observability.Logger
}

// NewSearcher creates a searcher logging skipped pages to logger
func NewSearcher(logger observability.Logger) *Searcher {
	return &Searcher{logger: observability.OrNop(logger)}
}

// Search finds query in src with a searcher that does not log
func Search(ctx context.Context, src Source, query string, opts Options) ([]Match, error) {
	return NewSearcher(nil).Search(ctx, src, query, opts)
}

// Search returns every match of query in page order. A blank query yields
// no matches. Cancellation is checked between pages and reported as
// pdf.ErrSearchCancelled. Pages whose text cannot be read are skipped.
func (s *Searcher) Search(ctx context.Context, src Source, query string, opts Options) ([]Match, error) {
	if src == nil {
		return nil, nil
	}
	matchOpts := pdf.MatchOptions{MatchCase: opts.MatchCase, WholeWord: opts.WholeWord}
	q, err := pdf.CompileQuery(query, matchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to compile query: %w", err)
	}
	if q == nil {
		return nil, nil
	}

	start := max(opts.StartPage, 0)
	end := src.PageCount()
	if opts.EndPage > 0 && opts.EndPage < end {
		end = opts.EndPage
	}

	var matches []Match
	for page := start; page < end; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", pdf.ErrSearchCancelled, err)
		}

		text, err := src.ExtractText(page)
		if err != nil {
			s.logger.Warn("page skipped by search", observability.Int("page", page), observability.Err(err))
			continue
		}
		if text == "" {
			continue
		}

		locs := q.FindAllIndex(text)
		if len(locs) == 0 {
			continue
		}

		// rectangles come back one per match; pair them up only when the
		// text layer agrees on the count
		rects, err := src.FindMatchRects(page, query, matchOpts)
		if err != nil || len(rects) != len(locs) {
			rects = nil
		}

		for i, loc := range locs {
			m := Match{
				Page:    page,
				Start:   loc[0],
				Length:  loc[1] - loc[0],
				Text:    text[loc[0]:loc[1]],
				Snippet: Snippet(text, loc[0], loc[1]),
			}
			if rects != nil && !rects[i].Empty() {
				m.Rects = []pdf.DocumentRect{rects[i]}
			}
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// Snippet returns the text around [start, end) with ContextChars characters
// on each side, "..." marking truncated sides and line breaks flattened
func Snippet(text string, start, end int) string {
	from := start
	for n := 0; n < ContextChars && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for n := 0; n < ContextChars && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}

	snippet := text[from:to]
	if from > 0 {
		snippet = "..." + snippet
	}
	if to < len(text) {
		snippet += "..."
	}
	snippet = strings.ReplaceAll(snippet, "\n", " ")
	snippet = strings.ReplaceAll(snippet, "\r", "")
	return strings.TrimSpace(snippet)
}
