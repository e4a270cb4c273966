package pdf

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Glyph is a positioned piece of text in document space
type Glyph struct {
	Text     string
	Font     string
	FontSize float64
	Box      DocumentRect
}

// Tolerances used when assembling glyphs into a text run
const (
	baselineTolerance = 2.0 // points
	spaceGapRatio     = 0.25
)

// TextRun is the text of a page with a document-space box per rune.
// Runes synthesised between glyphs (spaces, newlines) have no box.
type TextRun struct {
	Text    string
	offsets []int // byte offset of each rune in Text
	boxes   []DocumentRect
	hasBox  []bool
}

// NewTextRun assembles glyphs in content order into a searchable run
func NewTextRun(glyphs []Glyph) *TextRun {
	run := &TextRun{}
	var b strings.Builder
	var prev *Glyph

	add := func(r rune, box DocumentRect, ok bool) {
		run.offsets = append(run.offsets, b.Len())
		run.boxes = append(run.boxes, box)
		run.hasBox = append(run.hasBox, ok)
		b.WriteRune(r)
	}

	for i := range glyphs {
		g := &glyphs[i]
		text := norm.NFC.String(g.Text)
		if text == "" {
			continue
		}

		if prev != nil {
			switch {
			case math.Abs(g.Box.Bottom-prev.Box.Bottom) > baselineTolerance:
				add('\n', DocumentRect{}, false)
			case needsSpace(prev, g):
				add(' ', DocumentRect{}, false)
			}
		}

		for _, r := range text {
			add(r, g.Box, !unicode.IsSpace(r))
		}
		prev = g
	}

	run.Text = b.String()
	return run
}

// needsSpace reports whether the horizontal gap between two glyphs on the
// same line is wide enough to stand for an implicit space
func needsSpace(prev, next *Glyph) bool {
	last, _ := utf8.DecodeLastRuneInString(prev.Text)
	first, _ := utf8.DecodeRuneInString(next.Text)
	if unicode.IsSpace(last) || unicode.IsSpace(first) {
		return false
	}
	gap := next.Box.Left - prev.Box.Right
	size := next.FontSize
	if size <= 0 {
		size = next.Box.Height()
	}
	return gap > size*spaceGapRatio
}

// TextMatch is one occurrence of a query in a text run
type TextMatch struct {
	Start  int // byte offset into the run text
	Length int // byte length
	Rect   DocumentRect
	HasBox bool
}

// Query matches a search string in page text. Case folding is done by the
// regexp; whole-word boundaries are checked on the surrounding runes, since
// RE2's \b only knows ASCII word characters.
type Query struct {
	re        *regexp.Regexp
	wholeWord bool
}

// CompileQuery builds the matcher used for both search and highlighting.
// A blank query gives a nil Query, which matches nothing.
func CompileQuery(query string, opts MatchOptions) (*Query, error) {
	query = norm.NFC.String(query)
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	pattern := regexp.QuoteMeta(query)
	if !opts.MatchCase {
		pattern = `(?i)` + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &Query{re: re, wholeWord: opts.WholeWord}, nil
}

// FindAllIndex returns the byte ranges of all non-overlapping matches in text
func (q *Query) FindAllIndex(text string) [][]int {
	if q == nil || text == "" {
		return nil
	}
	if !q.wholeWord {
		return q.re.FindAllStringIndex(text, -1)
	}

	var out [][]int
	for pos := 0; pos < len(text); {
		loc := q.re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if isWordBoundary(text, start, end) {
			out = append(out, []int{start, end})
			pos = end
			continue
		}
		// retry one rune further so a word starting inside the rejected
		// match is still found
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}
	return out
}

// isWordBoundary reports whether text[start:end] is not glued to a word
// character on either side
func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Find returns all matches of q in the run, each with the union of the
// boxes of its glyphs
func (t *TextRun) Find(q *Query) []TextMatch {
	locs := q.FindAllIndex(t.Text)
	matches := make([]TextMatch, 0, len(locs))
	for _, loc := range locs {
		m := TextMatch{Start: loc[0], Length: loc[1] - loc[0]}
		m.Rect, m.HasBox = t.bounds(loc[0], loc[1])
		matches = append(matches, m)
	}
	return matches
}

// bounds unions the boxes of the runes in the byte range [start, end)
func (t *TextRun) bounds(start, end int) (DocumentRect, bool) {
	first := sort.SearchInts(t.offsets, start)
	var rect DocumentRect
	found := false
	for i := first; i < len(t.offsets) && t.offsets[i] < end; i++ {
		if !t.hasBox[i] {
			continue
		}
		if !found {
			rect = t.boxes[i]
			found = true
			continue
		}
		rect = rect.Union(t.boxes[i])
	}
	return rect, found
}

// Rects returns one rectangle per match of q, in text order. Matches made
// only of synthesised runes have no geometry and come back as a zero
// DocumentRect, so indices line up with the matches of the page text.
func (t *TextRun) Rects(q *Query) []DocumentRect {
	matches := t.Find(q)
	if len(matches) == 0 {
		return nil
	}
	rects := make([]DocumentRect, len(matches))
	for i, m := range matches {
		if m.HasBox {
			rects[i] = m.Rect
		}
	}
	return rects
}
