package assembly_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/colorbook/internal/assembly"
	"github.com/JaimeStill/colorbook/internal/generation"
)

// 1x1 lossless WebP.
const webpPixel = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func pngPage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, h/2, color.Black)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func jpegPage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.White)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func artifacts(t *testing.T, n int) []generation.Artifact {
	t.Helper()
	out := make([]generation.Artifact, n)
	for i := range n {
		out[i] = generation.Artifact{
			Index:     i,
			Data:      pngPage(t, 30, 40),
			MediaType: "image/png",
			Prompt:    "dragons, wide shot",
		}
	}
	return out
}

func TestAssemble(t *testing.T) {
	doc, err := assembly.Assemble(artifacts(t, 3), "Space Dinosaurs", "Leo")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if !bytes.HasPrefix(doc.Data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
	if doc.PageCount != 4 {
		t.Errorf("PageCount = %d, want 4 (cover + 3)", doc.PageCount)
	}

	count, err := api.PageCount(bytes.NewReader(doc.Data), nil)
	if err != nil {
		t.Fatalf("PageCount() error = %v", err)
	}
	if count != 4 {
		t.Errorf("rendered pages = %d, want 4", count)
	}

	if len(doc.Layout) != 3 {
		t.Fatalf("len(Layout) = %d, want 3", len(doc.Layout))
	}
	for i, p := range doc.Layout {
		if p.Index != i {
			t.Errorf("layout %d index = %d", i, p.Index)
		}
		if want := "#" + string(rune('1'+i)); p.Marker != want {
			t.Errorf("layout %d marker = %q, want %q", i, p.Marker, want)
		}
	}

	if doc.Filename() != "space-dinosaurs.pdf" {
		t.Errorf("Filename() = %q", doc.Filename())
	}
}

func TestAssembleLayout(t *testing.T) {
	doc, err := assembly.Assemble(artifacts(t, 1), "Castles", "Mia")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	p := doc.Layout[0]
	if p.Width != 210 {
		t.Errorf("width = %v, want full page width 210", p.Width)
	}
	if p.Height != 280 {
		t.Errorf("height = %v, want 280 for a 3:4 page", p.Height)
	}
	if p.X != 0 || p.Y != 8.5 {
		t.Errorf("origin = (%v, %v), want (0, 8.5)", p.X, p.Y)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	pages := artifacts(t, 2)

	first, err := assembly.Assemble(pages, "Robots", "Sam")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	second, err := assembly.Assemble(pages, "Robots", "Sam")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if !bytes.Equal(first.Data, second.Data) {
		t.Error("identical inputs produced different documents")
	}
}

func TestAssembleMixedFormats(t *testing.T) {
	webp, err := base64.StdEncoding.DecodeString(webpPixel)
	if err != nil {
		t.Fatalf("decode webp fixture: %v", err)
	}

	pages := []generation.Artifact{
		{Index: 0, Data: pngPage(t, 30, 40), MediaType: "image/png"},
		{Index: 1, Data: jpegPage(t, 30, 40), MediaType: "image/jpeg"},
		{Index: 2, Data: webp, MediaType: "image/webp"},
	}

	doc, err := assembly.Assemble(pages, "Mixed", "Ada")
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if doc.PageCount != 4 {
		t.Errorf("PageCount = %d, want 4", doc.PageCount)
	}
}

func TestAssembleIncomplete(t *testing.T) {
	page := func(i int) generation.Artifact {
		return generation.Artifact{Index: i, Data: pngPage(t, 4, 4), MediaType: "image/png"}
	}

	tests := []struct {
		name  string
		pages []generation.Artifact
	}{
		{"empty", nil},
		{"gap", []generation.Artifact{page(0), page(2)}},
		{"out of order", []generation.Artifact{page(1), page(0)}},
		{"duplicate", []generation.Artifact{page(0), page(0)}},
		{"starts at one", []generation.Artifact{page(1)}},
		{"missing data", []generation.Artifact{{Index: 0, MediaType: "image/png"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := assembly.Assemble(tt.pages, "Title", "Owner")
			if !errors.Is(err, assembly.ErrIncompleteArtifactSet) {
				t.Errorf("err = %v, want ErrIncompleteArtifactSet", err)
			}
		})
	}
}

func TestAssembleInvalidInput(t *testing.T) {
	pages := artifacts(t, 1)

	tests := []struct {
		name, title, owner string
	}{
		{"empty title", "", "Leo"},
		{"blank title", "  ", "Leo"},
		{"empty owner", "Dragons", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := assembly.Assemble(pages, tt.title, tt.owner)
			if !errors.Is(err, assembly.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAssembleInvalidImage(t *testing.T) {
	pages := []generation.Artifact{
		{Index: 0, Data: []byte("not an image"), MediaType: "image/png"},
	}

	_, err := assembly.Assemble(pages, "Broken", "Leo")
	if !errors.Is(err, assembly.ErrInvalidImage) {
		t.Errorf("err = %v, want ErrInvalidImage", err)
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Space Dinosaurs", "space-dinosaurs"},
		{"  Cats & Dogs!! ", "cats-dogs"},
		{"Über Café 2", "ber-caf-2"},
		{"***", "coloring-book"},
		{"", "coloring-book"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := assembly.Slug(tt.in); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{assembly.ErrInvalidInput, http.StatusBadRequest},
		{assembly.ErrIncompleteArtifactSet, http.StatusConflict},
		{assembly.ErrInvalidImage, http.StatusUnprocessableEntity},
		{assembly.ErrRender, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := assembly.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
