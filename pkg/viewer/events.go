package viewer

import "github.com/pyhub-apps/pdfviewport-golang/pkg/zoom"

// Event is a notification for the view layer
type Event interface {
	event()
}

// PageEvent reports that a page raster arrived or failed
type PageEvent struct {
	Page    int // 0-based
	Data    []byte
	Success bool
	Err     error
}

// ThumbnailEvent reports a thumbnail completion
type ThumbnailEvent struct {
	Page    int
	Data    []byte
	Success bool
	Err     error
}

// ZoomEvent carries the zoom state after every change
type ZoomEvent struct {
	Visual       float64
	Rendered     float64
	DisplayScale float64
	Phase        zoom.Phase
	Mode         zoom.Mode
}

// ScrollEvent asks the view to move to a scroll offset after a settle
type ScrollEvent struct {
	X float64
	Y float64
}

// SearchEvent carries the search status line and counts
type SearchEvent struct {
	Query         string
	Status        string
	Count         int
	Current       int // index of the current match, -1 without matches
	MatchesOnPage int // matches on the current page
}

// NavigateEvent asks the view to bring a 0-based page into view
type NavigateEvent struct {
	Page int
}

func (PageEvent) event()      {}
func (ThumbnailEvent) event() {}
func (ZoomEvent) event()      {}
func (ScrollEvent) event()    {}
func (SearchEvent) event()    {}
func (NavigateEvent) event()  {}
