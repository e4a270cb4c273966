package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/cache"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/render"
	"github.com/pyhub-apps/pdfviewport-golang/pkg/search"
)

func main() {
	var (
		renderer = flag.String("renderer", pdf.RendererFitz, "Rasterizer to use (fitz, draft)")
		dpi      = flag.Float64("dpi", 150, "Render DPI")
		zoom     = flag.Float64("zoom", 1.0, "Zoom factor")
		pages    = flag.Int("pages", 10, "Number of pages to render")
		query    = flag.String("search", "the", "Query for the search benchmark")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: benchmark [flags] <pdf-file>")
		os.Exit(1)
	}
	pdfPath := flag.Arg(0)

	start := time.Now()
	doc, err := pdf.Open(pdfPath, pdf.WithRenderer(*renderer))
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()
	openTime := time.Since(start)

	n := min(*pages, doc.PageCount())
	opts := pdf.DefaultRenderOptions()
	opts.DPI = *dpi
	opts.ZoomFactor = *zoom

	fmt.Printf("=== Render Benchmark ===\n")
	fmt.Printf("File: %s\n", pdfPath)
	fmt.Printf("Pages: %d (rendering %d)\n", doc.PageCount(), n)
	fmt.Printf("Open time: %v\n", openTime)

	worker := render.NewWorker(doc, cache.New(max(n, cache.DefaultMaxSize)))
	ctx := context.Background()

	// Cold pass rasterizes every page
	var totalBytes int
	start = time.Now()
	for i := 0; i < n; i++ {
		data, err := worker.RenderPage(ctx, i, opts)
		if err != nil {
			log.Printf("Failed to render page %d: %v", i+1, err)
			continue
		}
		totalBytes += len(data)
	}
	coldTime := time.Since(start)

	// Warm pass is served from the cache
	start = time.Now()
	for i := 0; i < n; i++ {
		if _, err := worker.RenderPage(ctx, i, opts); err != nil {
			continue
		}
	}
	warmTime := time.Since(start)

	stats := worker.Stats()
	cacheStats := worker.Cache().Stats()
	fmt.Printf("Cold render time: %v (%.2f pages/sec)\n", coldTime, float64(n)/coldTime.Seconds())
	fmt.Printf("Warm render time: %v\n", warmTime)
	fmt.Printf("Raster bytes: %d\n", totalBytes)
	fmt.Printf("Rasterizations: %d, failures: %d\n", stats.RasterCalls, stats.Failures)
	fmt.Printf("Cache hits: %d, misses: %d, evictions: %d\n", cacheStats.Hits, cacheStats.Misses, cacheStats.Evictions)

	// Search over the whole document
	start = time.Now()
	matches, err := search.Search(ctx, doc, *query, search.Options{})
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	searchTime := time.Since(start)
	fmt.Printf("Search %q: %d matches in %v\n", *query, len(matches), searchTime)

	fmt.Printf("\n=== Summary ===\n")
	fmt.Printf("Total processing time: %v\n", openTime+coldTime+warmTime+searchTime)
}
