package search

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Results is a finished search with a current match for navigation
type Results struct {
	Query     string
	matches   []Match
	current   int
	navigated bool
}

// NewResults wraps matches, selecting the first one
func NewResults(query string, matches []Match) *Results {
	r := &Results{Query: query, matches: matches, current: -1}
	if len(matches) > 0 {
		r.current = 0
	}
	return r
}

// Len returns the number of matches
func (r *Results) Len() int {
	return len(r.matches)
}

// Matches returns all matches in page order
func (r *Results) Matches() []Match {
	return r.matches
}

// Index returns the current match index, or -1 without matches
func (r *Results) Index() int {
	return r.current
}

// Current returns the current match
func (r *Results) Current() (Match, bool) {
	if r.current < 0 {
		return Match{}, false
	}
	return r.matches[r.current], true
}

// Next advances to the following match, wrapping at the end
func (r *Results) Next() (Match, bool) {
	if len(r.matches) == 0 {
		return Match{}, false
	}
	r.current = (r.current + 1) % len(r.matches)
	r.navigated = true
	return r.matches[r.current], true
}

// Previous steps back, wrapping at the start
func (r *Results) Previous() (Match, bool) {
	if len(r.matches) == 0 {
		return Match{}, false
	}
	if r.current <= 0 {
		r.current = len(r.matches) - 1
	} else {
		r.current--
	}
	r.navigated = true
	return r.matches[r.current], true
}

// Select makes match i current
func (r *Results) Select(i int) bool {
	if i < 0 || i >= len(r.matches) {
		return false
	}
	r.current = i
	r.navigated = true
	return true
}

// ForPage returns the matches on a 0-based page
func (r *Results) ForPage(page int) []Match {
	var out []Match
	for _, m := range r.matches {
		if m.Page == page {
			out = append(out, m)
		}
	}
	return out
}

// CountForPage returns the number of matches on a page
func (r *Results) CountForPage(page int) int {
	n := 0
	for _, m := range r.matches {
		if m.Page == page {
			n++
		}
	}
	return n
}

// CurrentOnPage returns the position of the current match among the
// matches of page, or -1 when the current match is elsewhere
func (r *Results) CurrentOnPage(page int) int {
	if r.current < 0 || r.matches[r.current].Page != page {
		return -1
	}
	pos := 0
	for _, m := range r.matches[:r.current] {
		if m.Page == page {
			pos++
		}
	}
	return pos
}

// Status is the line shown next to the search box
func (r *Results) Status() string {
	if strings.TrimSpace(r.Query) == "" {
		return ""
	}
	if len(r.matches) == 0 {
		return "No matches found"
	}
	if r.navigated {
		return fmt.Sprintf("%d of %d matches", r.current+1, len(r.matches))
	}
	return fmt.Sprintf("%d of %d matches on %s", r.current+1, len(r.matches), r.pageRange())
}

// pageRange lists the 1-based pages holding matches
func (r *Results) pageRange() string {
	seen := make(map[int]bool)
	var pages []int
	for _, m := range r.matches {
		if !seen[m.Page] {
			seen[m.Page] = true
			pages = append(pages, m.Page+1)
		}
	}
	sort.Ints(pages)

	if len(pages) > 5 {
		return fmt.Sprintf("pages %d-%d", pages[0], pages[len(pages)-1])
	}
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return "pages " + strings.Join(parts, ", ")
}
