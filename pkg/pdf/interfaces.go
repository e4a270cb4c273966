package pdf

// Geometry exposes page count and page sizes of an open document
type Geometry interface {
	// PageCount returns the total number of pages
	PageCount() int

	// PageSize returns the unrotated page size in points (0-based index)
	PageSize(index int) (Size, error)
}

// Rasterizer turns a page into PNG bytes of an exact pixel size
type Rasterizer interface {
	// Rasterize renders the page at pixelWidth×pixelHeight. The dimensions
	// are those of the final image, after rotation has been applied.
	Rasterize(index, pixelWidth, pixelHeight int, rotation Rotation) ([]byte, error)
}

// TextLayer extracts text and locates matches on a page
type TextLayer interface {
	// ExtractText returns the page text run used for searching
	ExtractText(index int) (string, error)

	// FindMatchRects returns one document-space rectangle per match of query
	FindMatchRects(index int, query string, opts MatchOptions) ([]DocumentRect, error)
}

// Document is an open PDF as seen by the viewport core
type Document interface {
	Geometry
	Rasterizer
	TextLayer

	// ID identifies the document in cache keys (usually its path)
	ID() string

	// Close releases resources associated with the document
	Close() error
}

// PageSource is a text backend able to produce glyph runs for a page
type PageSource interface {
	// NumPage returns the number of pages the backend sees
	NumPage() int

	// Glyphs returns the positioned glyphs of a page in content order
	Glyphs(index int) ([]Glyph, error)

	// MediaBox returns the page size when the backend can read it
	MediaBox(index int) (Size, bool)

	// Close releases the backend
	Close() error
}

// Metadata is implemented by documents that can report their outline and
// information dictionary
type Metadata interface {
	// Outline returns the bookmark tree, nil when the document has none
	Outline() ([]OutlineItem, error)

	// Properties returns the document information
	Properties() (Properties, error)
}
