// Package pdfviewport schedules page rendering for a PDF viewer: a bounded
// raster cache, viewport-driven lazy loading, two-tier zoom and search
// highlight geometry
package pdfviewport

import (
	"github.com/pyhub-apps/pdfviewport-golang/pkg/config"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/highlight"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/search"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/viewer"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/zoom"
)

// Re-export types from the sub-packages for the public API
type (
	Session       = viewer.Session
	Snapshot      = viewer.Snapshot
	Event         = viewer.Event
	PageEvent     = viewer.PageEvent
	ZoomEvent     = viewer.ZoomEvent
	SearchEvent   = viewer.SearchEvent
	NavigateEvent = viewer.NavigateEvent
	Option        = viewer.Option
	Config        = config.Config
	Document      = pdf.Document
	RenderOptions = pdf.RenderOptions
	Rotation      = pdf.Rotation
	SearchOptions = search.Options
	Match         = search.Match
	ScreenRect    = highlight.ScreenRect
	ZoomMode      = zoom.Mode
	OutlineItem   = pdf.OutlineItem
	Properties    = pdf.Properties
)

// Re-export option functions
var (
	WithConfig    = viewer.WithConfig
	WithLogger    = viewer.WithLogger
	DefaultConfig = config.Default
	LoadConfig    = config.Load
)

// Open opens a PDF file and starts a viewer session on it
func Open(filepath string, opts ...Option) (*Session, error) {
	return viewer.Open(filepath, opts...)
}

// New starts a viewer session on an already open document
func New(doc Document, opts ...Option) (*Session, error) {
	return viewer.New(doc, opts...)
}

// OpenDocument opens a PDF file without starting a session
func OpenDocument(filepath string, opts ...pdf.OpenOption) (Document, error) {
	return pdf.Open(filepath, opts...)
}
