// Package render draws normalized strokes for visual inspection.
// PDFRenderer fills each stroke outline and overlays the writing track with
// the stroke number at its first point, using gofpdf.
// Fonts are the PDF core fonts, so the character itself is never typeset;
// the header carries its codepoint instead.
package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/strokepipe/core"
)

const (
	pageMargin = 20.0 // mm
	cellSize   = 170.0
	cellPad    = 8.0
)

// PDFRenderer renders a stroke sheet as a one-page A4 PDF.
type PDFRenderer struct {
	// ShowTrack overlays the writing-order track.
	ShowTrack bool
}

// NewPDFRenderer creates a PDFRenderer that draws tracks.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{ShowTrack: true}
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// Render draws the strokes of id into PDF bytes.
func (r *PDFRenderer) Render(id core.CharacterID, strokes []core.Stroke) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(pageMargin, pageMargin, id.String())
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.Text(pageMargin, pageMargin+6, strconv.Itoa(len(strokes))+" strokes")
	pdf.SetTextColor(0, 0, 0)

	top := pageMargin + 12
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.2)
	pdf.Rect(pageMargin, top, cellSize, cellSize, "D")

	b := bounds(strokes)
	if b.empty() {
		return output(pdf)
	}
	tf := b.fit(pageMargin+cellPad, top+cellPad, cellSize-2*cellPad)

	pdf.SetFillColor(40, 40, 40)
	for _, s := range strokes {
		drawOutline(pdf, tf, s.Outline)
	}

	if r.ShowTrack {
		pdf.SetDrawColor(220, 40, 40)
		pdf.SetFillColor(220, 40, 40)
		pdf.SetTextColor(220, 40, 40)
		pdf.SetLineWidth(0.6)
		pdf.SetFont("Helvetica", "B", 8)
		for i, s := range strokes {
			drawTrack(pdf, tf, s.Track, i+1)
		}
	}
	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawOutline(pdf *gofpdf.Fpdf, tf transform, cmds []core.PathCommand) {
	if len(cmds) == 0 {
		return
	}
	open := false
	for _, c := range cmds {
		switch c.Kind {
		case core.MoveTo:
			if open {
				pdf.ClosePath()
			}
			x, y := tf.apply(c.X, c.Y)
			pdf.MoveTo(x, y)
			open = true
		case core.LineTo:
			x, y := tf.apply(c.X, c.Y)
			pdf.LineTo(x, y)
		case core.QuadTo:
			cx, cy := tf.apply(c.Begin.X, c.Begin.Y)
			x, y := tf.apply(c.End.X, c.End.Y)
			pdf.CurveTo(cx, cy, x, y)
		}
	}
	if open {
		pdf.ClosePath()
		pdf.DrawPath("F")
	}
}

func drawTrack(pdf *gofpdf.Fpdf, tf transform, pts []core.Point, n int) {
	if len(pts) == 0 {
		return
	}
	px, py := tf.apply(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		x, y := tf.apply(p.X, p.Y)
		pdf.Line(px, py, x, y)
		px, py = x, y
	}
	sx, sy := tf.apply(pts[0].X, pts[0].Y)
	pdf.Circle(sx, sy, 1.2, "F")
	pdf.Text(sx+1.8, sy-1.8, strconv.Itoa(n))
}

// box is the bounding box of a stroke set in source units.
type box struct {
	minX, minY, maxX, maxY float64
}

func (b box) empty() bool {
	return b.minX > b.maxX
}

func bounds(strokes []core.Stroke) box {
	b := box{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
	add := func(x, y core.Number) {
		b.minX = math.Min(b.minX, x.Float64())
		b.minY = math.Min(b.minY, y.Float64())
		b.maxX = math.Max(b.maxX, x.Float64())
		b.maxY = math.Max(b.maxY, y.Float64())
	}
	for _, s := range strokes {
		for _, c := range s.Outline {
			if c.Kind == core.QuadTo {
				add(c.Begin.X, c.Begin.Y)
				add(c.End.X, c.End.Y)
				continue
			}
			add(c.X, c.Y)
		}
		for _, p := range s.Track {
			add(p.X, p.Y)
		}
	}
	return b
}

// transform maps source coordinates into page millimetres.
type transform struct {
	scale, dx, dy float64
}

// fit scales b uniformly into a size×size square at (x, y), centred.
func (b box) fit(x, y, size float64) transform {
	w, h := b.maxX-b.minX, b.maxY-b.minY
	extent := math.Max(w, h)
	if extent == 0 {
		extent = 1
	}
	scale := size / extent
	return transform{
		scale: scale,
		dx:    x + (size-w*scale)/2 - b.minX*scale,
		dy:    y + (size-h*scale)/2 - b.minY*scale,
	}
}

func (t transform) apply(x, y core.Number) (float64, float64) {
	return x.Float64()*t.scale + t.dx, y.Float64()*t.scale + t.dy
}
