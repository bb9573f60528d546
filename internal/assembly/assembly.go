// Package assembly compiles the pages of a completed run into a printable
// PDF coloring book: a cover page followed by one page per artifact.
package assembly

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/colorbook/internal/generation"
)

// ContentType is the media type of an assembled document.
const ContentType = "application/pdf"

const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	coverInset   = 10.0
	markerHeight = 5.0
	fontFamily   = "Helvetica"
)

// Output is stamped with a fixed date so identical inputs yield identical bytes.
var stamp = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Placement records where a page image was drawn, in millimetres.
type Placement struct {
	Index  int     `json:"index"`
	Marker string  `json:"marker"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is an assembled coloring book.
type Document struct {
	Title     string
	Owner     string
	PageCount int
	Layout    []Placement
	Data      []byte
}

// Filename returns a download-safe file name derived from the title.
func (d *Document) Filename() string {
	return Slug(d.Title) + ".pdf"
}

// Assemble renders artifacts into a Document. Artifacts must carry indices
// 0..N-1 in order with N >= 1.
func Assemble(artifacts []generation.Artifact, title, owner string) (*Document, error) {
	title = strings.TrimSpace(title)
	owner = strings.TrimSpace(owner)

	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if err := checkContiguous(artifacts); err != nil {
		return nil, err
	}

	images, err := normalize(artifacts)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(coverInset*2, coverInset*2, coverInset*2)
	pdf.SetAutoPageBreak(false, 0)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetAuthor(owner, true)
	pdf.SetCreator("colorbook", false)
	pdf.SetProducer("colorbook", false)

	writeCover(pdf, tr, title, owner, len(images))

	layout := make([]Placement, 0, len(images))
	for _, img := range images {
		layout = append(layout, writePage(pdf, img))
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}

	count, err := api.PageCount(bytes.NewReader(buf.Bytes()), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: verify page count: %v", ErrRender, err)
	}
	if count != len(images)+1 {
		return nil, fmt.Errorf("%w: rendered %d pages, want %d", ErrRender, count, len(images)+1)
	}

	return &Document{
		Title:     title,
		Owner:     owner,
		PageCount: count,
		Layout:    layout,
		Data:      buf.Bytes(),
	}, nil
}

func checkContiguous(artifacts []generation.Artifact) error {
	if len(artifacts) == 0 {
		return fmt.Errorf("%w: no pages", ErrIncompleteArtifactSet)
	}
	for i, a := range artifacts {
		if a.Index != i {
			return fmt.Errorf("%w: position %d holds page index %d", ErrIncompleteArtifactSet, i, a.Index)
		}
		if len(a.Data) == 0 {
			return fmt.Errorf("%w: page %d has no image data", ErrIncompleteArtifactSet, i)
		}
	}
	return nil
}

func writeCover(pdf *gofpdf.Fpdf, tr func(string) string, title, owner string, pages int) {
	pdf.AddPage()

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1.5)
	pdf.Rect(coverInset, coverInset, pageWidth-2*coverInset, pageHeight-2*coverInset, "D")

	pdf.SetY(90)
	pdf.SetFont(fontFamily, "B", 30)
	pdf.MultiCell(0, 13, tr(title), "", "C", false)

	pdf.Ln(8)
	pdf.SetFont(fontFamily, "", 16)
	pdf.MultiCell(0, 8, tr("A coloring book for "+owner), "", "C", false)

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "I", 12)
	pdf.MultiCell(0, 6, pageLabel(pages), "", "C", false)
}

func writePage(pdf *gofpdf.Fpdf, img pageImage) Placement {
	p := place(img)
	opts := gofpdf.ImageOptions{ImageType: img.imageType}
	name := "page-" + strconv.Itoa(img.index)

	pdf.AddPage()
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.data))
	pdf.ImageOptions(name, p.X, p.Y, p.Width, p.Height, false, opts, 0, "")

	pdf.SetFont(fontFamily, "", 9)
	pdf.SetXY(0, pageHeight-markerHeight-2)
	pdf.CellFormat(pageWidth-4, markerHeight, p.Marker, "", 0, "R", false, 0, "")
	return p
}

// place scales the image to fill the page while keeping its aspect ratio.
func place(img pageImage) Placement {
	scale := min(pageWidth/float64(img.width), pageHeight/float64(img.height))
	w := float64(img.width) * scale
	h := float64(img.height) * scale

	return Placement{
		Index:  img.index,
		Marker: "#" + strconv.Itoa(img.index+1),
		X:      (pageWidth - w) / 2,
		Y:      (pageHeight - h) / 2,
		Width:  w,
		Height: h,
	}
}

func pageLabel(n int) string {
	if n == 1 {
		return "1 page to color"
	}
	return strconv.Itoa(n) + " pages to color"
}

// Slug lowercases s and reduces it to ASCII letters, digits, and single dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false

	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "coloring-book"
	}
	return slug
}
