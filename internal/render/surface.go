// Package render draws the map scene onto an abstract Surface. Two surfaces
// ship with it: a DisplayList that a browser canvas replays, and an SVG
// document.
package render

// Vec is a pixel position.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Surface is the drawing target. Coordinates are pixels from the top-left
// corner; colors are CSS color strings.
type Surface interface {
	Size() (w, h float64)
	Clear()
	FillRect(x, y, w, h float64, color string)
	Line(x1, y1, x2, y2 float64, color string, width float64)
	Polyline(pts []Vec, color string, width float64)
	Circle(x, y, r float64, color string)
	Image(href string, x, y, size float64)
	Text(x, y float64, text, font, color string)
}
