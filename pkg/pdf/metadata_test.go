package pdf

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
)

func TestOutlineItems(t *testing.T) {
	bms := []pdfcpu.Bookmark{
		{Title: "Intro", PageFrom: 1},
		{Title: "Body", PageFrom: 3, Kids: []pdfcpu.Bookmark{
			{Title: "Section", PageFrom: 4},
			{Title: "Dangling", PageFrom: 0},
		}},
		{Title: "Past the end", PageFrom: 9},
	}

	items := outlineItems(bms, 5)
	if len(items) != 3 {
		t.Fatalf("expected 3 top-level items, got %d", len(items))
	}
	if items[0].Title != "Intro" || items[0].Page != 0 {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].Page != 2 || len(items[1].Children) != 2 {
		t.Fatalf("unexpected second item: %+v", items[1])
	}
	if items[1].Children[0].Page != 3 {
		t.Errorf("child page = %d, want 3", items[1].Children[0].Page)
	}
	if items[1].Children[1].Page != -1 {
		t.Errorf("bookmark without destination should have page -1, got %d", items[1].Children[1].Page)
	}
	if items[2].Page != -1 {
		t.Errorf("out of range bookmark should have page -1, got %d", items[2].Page)
	}
	if items[0].Children != nil {
		t.Errorf("leaf item should have no children")
	}
}

func TestOutlineItemsEmpty(t *testing.T) {
	if items := outlineItems(nil, 3); items != nil {
		t.Errorf("expected nil outline, got %v", items)
	}
}
