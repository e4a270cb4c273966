// viewsim drives a viewer session from the command line: it opens a PDF,
// scrolls, zooms and searches, printing every session event as a JSON line.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/config"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/observability"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/search"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/viewer"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/zoom"
)

type outputEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type eventWriter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (w *eventWriter) write(e outputEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(e); err != nil {
		log.Printf("failed to write event: %v", err)
	}
}

func main() {
	var (
		pdfPath    = flag.String("pdf", "", "Path to PDF file")
		configPath = flag.String("config", "", "YAML config file")
		renderer   = flag.String("renderer", "", "Rasterizer to use (fitz, draft)")
		visible    = flag.String("visible", "", "1-based visible page range, e.g. 20-22")
		page       = flag.Int("page", 0, "1-based page to jump to")
		wheel      = flag.Int("wheel", 0, "Wheel ticks to apply; negative zooms out")
		fit        = flag.String("fit", "", "Fit mode (width, page, actual)")
		viewport   = flag.String("viewport", "1280x900", "Viewport size for fit modes")
		query      = flag.String("search", "", "Text to search for")
		wait       = flag.Duration("wait", 2*time.Second, "How long to wait for renders to settle")
		logLevel   = flag.String("log", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *pdfPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *renderer != "" {
		cfg.Renderer = *renderer
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger := observability.NewTextLogger(os.Stderr, cfg.LogLevel)

	s, err := viewer.Open(*pdfPath, viewer.WithConfig(cfg), viewer.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}

	out := &eventWriter{enc: json.NewEncoder(os.Stdout)}
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for ev := range s.Events() {
			out.write(describe(ev))
		}
	}()

	if props, err := s.Properties(); err == nil {
		outline, err := s.Outline()
		if err != nil {
			log.Printf("Outline unavailable: %v", err)
		}
		out.write(outputEvent{Type: "document", Payload: map[string]interface{}{
			"title":     props.Title,
			"author":    props.Author,
			"producer":  props.Producer,
			"version":   props.Version,
			"pages":     props.PageCount,
			"file_size": props.FileSize,
			"bookmarks": len(outline),
		}})
	}

	if err := drive(s, *visible, *page, *wheel, *fit, *viewport, *query); err != nil {
		log.Printf("Session error: %v", err)
	}
	time.Sleep(*wait)

	if snap, err := s.Snapshot(); err == nil {
		loaded := 0
		for _, p := range snap.Pages {
			if p.Loaded() {
				loaded++
			}
		}
		out.write(outputEvent{Type: "summary", Payload: map[string]interface{}{
			"pages":          len(snap.Pages),
			"loaded":         loaded,
			"cached_rasters": snap.CachedRasters,
			"zoom":           snap.Zoom.Rendered,
			"current":        snap.Current + 1,
			"search_status":  snap.Search.Status,
		}})
	}

	if err := s.Close(); err != nil {
		log.Printf("Failed to close document: %v", err)
	}
	<-drained
}

func drive(s *viewer.Session, visible string, page, wheel int, fit, viewport, query string) error {
	if visible != "" {
		first, last, err := parseRange(visible)
		if err != nil {
			return err
		}
		if err := s.OnViewportChanged(first, last); err != nil {
			return err
		}
	}

	if page > 0 {
		if err := s.GoToPage(page); err != nil {
			return err
		}
	}

	if fit != "" {
		w, h, err := parseSize(viewport)
		if err != nil {
			return err
		}
		mode, err := parseMode(fit)
		if err != nil {
			return err
		}
		if err := s.OnViewportResized(w, h); err != nil {
			return err
		}
		if err := s.OnFitMode(mode); err != nil {
			return err
		}
	}

	for i := 0; i < abs(wheel); i++ {
		if err := s.OnWheelZoom(wheel > 0); err != nil {
			return err
		}
		time.Sleep(50 * time.Millisecond)
	}

	if query != "" {
		return s.Search(query, search.Options{})
	}
	return nil
}

func describe(ev viewer.Event) outputEvent {
	switch e := ev.(type) {
	case viewer.PageEvent:
		o := outputEvent{Type: "page", Payload: map[string]interface{}{
			"page": e.Page + 1, "bytes": len(e.Data), "success": e.Success,
		}}
		if e.Err != nil {
			o.Error = e.Err.Error()
		}
		return o
	case viewer.ThumbnailEvent:
		return outputEvent{Type: "thumbnail", Payload: map[string]interface{}{
			"page": e.Page + 1, "bytes": len(e.Data), "success": e.Success,
		}}
	case viewer.ZoomEvent:
		return outputEvent{Type: "zoom", Payload: map[string]interface{}{
			"visual": e.Visual, "rendered": e.Rendered, "display_scale": e.DisplayScale,
			"phase": e.Phase.String(), "mode": e.Mode.String(),
		}}
	case viewer.SearchEvent:
		return outputEvent{Type: "search", Payload: e}
	case viewer.ScrollEvent:
		return outputEvent{Type: "scroll", Payload: e}
	case viewer.NavigateEvent:
		return outputEvent{Type: "navigate", Payload: map[string]int{"page": e.Page + 1}}
	default:
		return outputEvent{Type: fmt.Sprintf("%T", ev)}
	}
}

func parseRange(s string) (int, int, error) {
	lo, hi, found := strings.Cut(s, "-")
	first, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page range %q: %w", s, err)
	}
	if !found {
		return first, first, nil
	}
	last, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page range %q: %w", s, err)
	}
	return first, last, nil
}

func parseSize(s string) (float64, float64, error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid viewport %q, want WIDTHxHEIGHT", s)
	}
	w, err := strconv.ParseFloat(ws, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid viewport width: %w", err)
	}
	h, err := strconv.ParseFloat(hs, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid viewport height: %w", err)
	}
	return w, h, nil
}

func parseMode(s string) (zoom.Mode, error) {
	switch s {
	case "width":
		return zoom.FitWidth, nil
	case "page":
		return zoom.FitPage, nil
	case "actual":
		return zoom.ActualSize, nil
	}
	return zoom.Manual, fmt.Errorf("unknown fit mode %q", s)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
