package pdfviewport

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pyhub-apps/pdfviewport-golang/pkg/pdf"
)

const samplePDF = "testdata/sample.pdf"

func requireSample(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(samplePDF); err != nil {
		t.Skip("testdata/sample.pdf not available")
	}
}

func TestOpenPDF(t *testing.T) {
	requireSample(t)

	doc, err := OpenDocument(samplePDF, pdf.WithRenderer(pdf.RendererDraft))
	if err != nil {
		t.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 1 {
		t.Errorf("Expected 1 page, got %d", doc.PageCount())
	}

	// A4 is approximately 595 x 842 points
	size, err := doc.PageSize(0)
	if err != nil {
		t.Fatalf("Failed to get page size: %v", err)
	}
	if size.Width < 590 || size.Width > 600 {
		t.Errorf("Unexpected page width: %.2f", size.Width)
	}
	if size.Height < 840 || size.Height > 845 {
		t.Errorf("Unexpected page height: %.2f", size.Height)
	}
}

func TestExtractText(t *testing.T) {
	requireSample(t)

	doc, err := OpenDocument(samplePDF, pdf.WithRenderer(pdf.RendererDraft))
	if err != nil {
		t.Fatalf("Failed to open PDF: %v", err)
	}
	defer doc.Close()

	text, err := doc.ExtractText(0)
	if err != nil {
		t.Fatalf("Failed to extract text: %v", err)
	}
	if !strings.Contains(text, "Dummy PDF file") {
		t.Errorf("Expected text to contain 'Dummy PDF file', got: %s", text)
	}
}

func TestSessionOnSample(t *testing.T) {
	requireSample(t)

	cfg := DefaultConfig()
	cfg.Renderer = pdf.RendererDraft
	s, err := Open(samplePDF, WithConfig(cfg))
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	defer s.Close()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if pe, ok := ev.(PageEvent); ok && pe.Page == 0 {
				if !pe.Success {
					t.Fatalf("Page 0 failed to render: %v", pe.Err)
				}
				if len(pe.Data) == 0 {
					t.Error("Expected raster bytes for page 0")
				}
				return
			}
		case <-deadline:
			t.Fatal("Timed out waiting for page 0")
		}
	}
}
