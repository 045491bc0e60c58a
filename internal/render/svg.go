package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"
)

// SVG renders into a standalone SVG document.
type SVG struct {
	w, h float64
	body bytes.Buffer
}

func NewSVG(w, h float64) *SVG {
	return &SVG{w: w, h: h}
}

func (s *SVG) Size() (float64, float64) { return s.w, s.h }

func (s *SVG) Clear() { s.body.Reset() }

func (s *SVG) FillRect(x, y, w, h float64, color string) {
	fmt.Fprintf(&s.body, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n", x, y, w, h, attr(color))
}

func (s *SVG) Line(x1, y1, x2, y2 float64, color string, width float64) {
	fmt.Fprintf(&s.body, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%g"/>`+"\n",
		x1, y1, x2, y2, attr(color), width)
}

func (s *SVG) Polyline(pts []Vec, color string, width float64) {
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	fmt.Fprintf(&s.body, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%g" stroke-linejoin="round"/>`+"\n",
		strings.Join(coords, " "), attr(color), width)
}

func (s *SVG) Circle(x, y, r float64, color string) {
	fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%g" fill="%s"/>`+"\n", x, y, r, attr(color))
}

func (s *SVG) Image(href string, x, y, size float64) {
	fmt.Fprintf(&s.body, `<image href="%s" x="%.2f" y="%.2f" width="%g" height="%g"/>`+"\n", attr(href), x, y, size, size)
}

func (s *SVG) Text(x, y float64, text, font, color string) {
	if text == "" {
		return
	}
	fmt.Fprintf(&s.body, `<text x="%.2f" y="%.2f" style="font: %s" fill="%s">%s</text>`+"\n",
		x, y, attr(font), attr(color), html.EscapeString(text))
}

// Bytes returns the complete document.
func (s *SVG) Bytes() []byte {
	var out bytes.Buffer
	fmt.Fprintf(&out, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n", s.w, s.h, s.w, s.h)
	out.Write(s.body.Bytes())
	out.WriteString("</svg>\n")
	return out.Bytes()
}

func attr(s string) string { return html.EscapeString(s) }
