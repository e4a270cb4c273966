package viewer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf/pdftest"
)

func (r *recorder) navigations() []int {
	var out []int
	for _, e := range r.all() {
		if n, ok := e.(NavigateEvent); ok {
			out = append(out, n.Page)
		}
	}
	return out
}

func TestGoToPageMovesWindow(t *testing.T) {
	doc := pdftest.New(50)
	s, rec := openStub(t, doc, testConfig())

	require.NoError(t, s.GoToPage(20))
	snap := snapshot(t, s)
	assert.Equal(t, 19, snap.Current)
	assert.Equal(t, 19, snap.Selected)
	assert.Equal(t, 19, snap.First)
	assert.Equal(t, 23, snap.Last, "the visible span is kept")
	assert.True(t, snap.CanGoBack)
	assert.False(t, snap.CanGoForward)

	require.Eventually(t, func() bool {
		return snapshot(t, s).Pages[19].Loaded()
	}, waitFor, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(rec.navigations()) == 1
	}, waitFor, 5*time.Millisecond)
	assert.Equal(t, []int{19}, rec.navigations())

	assert.ErrorIs(t, s.GoToPage(0), pdf.ErrOutOfRange)
	assert.ErrorIs(t, s.GoToPage(51), pdf.ErrOutOfRange)
	assert.Equal(t, 19, snapshot(t, s).Current)
}

func TestPageStepsStopAtEnds(t *testing.T) {
	doc := pdftest.New(3)
	s, _ := openStub(t, doc, testConfig())

	require.NoError(t, s.PreviousPage())
	assert.Equal(t, 0, snapshot(t, s).Current)
	assert.False(t, snapshot(t, s).CanGoBack, "a step that goes nowhere is not recorded")

	require.NoError(t, s.NextPage())
	require.NoError(t, s.NextPage())
	assert.Equal(t, 2, snapshot(t, s).Current)

	require.NoError(t, s.NextPage())
	snap := snapshot(t, s)
	assert.Equal(t, 2, snap.Current)
	assert.Equal(t, 2, snap.Last)

	require.NoError(t, s.PreviousPage())
	assert.Equal(t, 1, snapshot(t, s).Current)
}

func TestNavigationHistory(t *testing.T) {
	doc := pdftest.New(50)
	s, _ := openStub(t, doc, testConfig())

	require.NoError(t, s.GoToPage(20))
	require.NoError(t, s.LastPage())
	snap := snapshot(t, s)
	assert.Equal(t, 49, snap.Current)
	assert.Equal(t, 49, snap.Last)

	require.NoError(t, s.GoBack())
	assert.Equal(t, 19, snapshot(t, s).Current)

	require.NoError(t, s.GoBack())
	snap = snapshot(t, s)
	assert.Equal(t, 0, snap.Current)
	assert.False(t, snap.CanGoBack)
	assert.True(t, snap.CanGoForward)

	// nothing left to go back to
	require.NoError(t, s.GoBack())
	assert.Equal(t, 0, snapshot(t, s).Current)

	require.NoError(t, s.GoForward())
	assert.Equal(t, 19, snapshot(t, s).Current)

	// a fresh jump discards the forward pages
	require.NoError(t, s.FirstPage())
	snap = snapshot(t, s)
	assert.Equal(t, 0, snap.Current)
	assert.True(t, snap.CanGoBack)
	assert.False(t, snap.CanGoForward)
}

func TestOutlineAndProperties(t *testing.T) {
	doc := pdftest.New(8)
	doc.Bookmarks = []pdf.OutlineItem{
		{Title: "Chapter 1", Page: 0},
		{Title: "Chapter 2", Page: 4, Children: []pdf.OutlineItem{{Title: "2.1", Page: 5}}},
	}
	doc.Info = pdf.Properties{Title: "Manual", Author: "Docs Team"}
	s, _ := openStub(t, doc, testConfig())

	items, err := s.Outline()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2.1", items[1].Children[0].Title)

	// following a bookmark is a page jump
	require.NoError(t, s.GoToPage(items[1].Page+1))
	assert.Equal(t, 4, snapshot(t, s).Current)

	props, err := s.Properties()
	require.NoError(t, err)
	assert.Equal(t, "Manual", props.Title)
	assert.Equal(t, "Docs Team", props.Author)
	assert.Equal(t, 8, props.PageCount)
}

func TestNavigationOnClosedSession(t *testing.T) {
	s, err := New(pdftest.New(5), WithConfig(testConfig()))
	require.NoError(t, err)
	rec := record(s)
	require.NoError(t, s.Close())
	<-rec.done

	assert.ErrorIs(t, s.GoToPage(2), ErrClosed)
	assert.ErrorIs(t, s.GoBack(), ErrClosed)
	_, err = s.Outline()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Properties()
	assert.ErrorIs(t, err, ErrClosed)
}
