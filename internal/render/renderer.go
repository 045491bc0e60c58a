package render

import (
	"healthease/internal/geo"
	"healthease/internal/sim"
)

// Drawing constants.
const (
	Background    = "#f6fbff"
	GridColor     = "rgba(200,220,230,0.35)"
	GridDivisions = 6

	AmbulanceTrailColor = "rgba(224,67,67,0.9)"
	OtherTrailColor     = "rgba(255,152,0,0.9)"

	LabelFont  = "12px Inter, Arial"
	LabelColor = "#102027"

	LargeIconSize = 36.0
	SmallIconSize = 18.0
	DotRadius     = 8.0

	statusLineX      = 10.0
	statusLineTop    = 18.0
	statusLineHeight = 16.0
)

// Scene is everything one frame needs.
type Scene struct {
	Objects []*sim.MapObject
	Bounds  geo.BoundingBox
	Status  []string
}

// Renderer draws scenes. It holds no per-frame state, so the same scene on
// the same surface always yields the same drawing.
type Renderer struct {
	icons *IconCache
}

// NewRenderer creates a renderer. icons may be nil, in which case every
// object is drawn as a dot.
func NewRenderer(icons *IconCache) *Renderer {
	return &Renderer{icons: icons}
}

// Render redraws the whole surface: background, grid, trails, then each
// object's icon or dot with its label, then the status overlay.
func (r *Renderer) Render(s Surface, scene Scene) {
	w, h := s.Size()
	s.Clear()

	s.FillRect(0, 0, w, h, Background)
	for i := 1; i < GridDivisions; i++ {
		x := w / GridDivisions * float64(i)
		s.Line(x, 0, x, h, GridColor, 1)
	}
	for j := 1; j < GridDivisions; j++ {
		y := h / GridDivisions * float64(j)
		s.Line(0, y, w, y, GridColor, 1)
	}

	// Trails go underneath every icon.
	for _, o := range scene.Objects {
		if len(o.Trail) <= 1 {
			continue
		}
		pts := make([]Vec, len(o.Trail))
		for i, p := range o.Trail {
			pts[i] = project(scene.Bounds, p, w, h)
		}
		color, width := trailStyle(o)
		s.Polyline(pts, color, width)
	}

	for _, o := range scene.Objects {
		p := project(scene.Bounds, o.Position, w, h)
		if href, ok := r.icon(o.Icon); ok {
			size := SmallIconSize
			if o.Kind == sim.KindAmbulance || o.Kind == sim.KindDelivery {
				size = LargeIconSize
			}
			s.Image(href, p.X-size/2, p.Y-size/2, size)
		} else {
			s.Circle(p.X, p.Y, DotRadius, dotColor(o))
		}
		s.Text(p.X+14, p.Y+6, o.Label, LabelFont, LabelColor)
	}

	for i, line := range scene.Status {
		s.Text(statusLineX, statusLineTop+statusLineHeight*float64(i), line, LabelFont, LabelColor)
	}
}

func (r *Renderer) icon(id string) (string, bool) {
	if id == "" || r.icons == nil {
		return "", false
	}
	return r.icons.Get(id)
}

func trailStyle(o *sim.MapObject) (string, float64) {
	if o.Kind == sim.KindAmbulance {
		return AmbulanceTrailColor, 3
	}
	return OtherTrailColor, 2
}

func dotColor(o *sim.MapObject) string {
	if o.Color != "" {
		return o.Color
	}
	return sim.ColorDefault
}

func project(b geo.BoundingBox, p geo.Point, w, h float64) Vec {
	x, y := b.Project(p, w, h)
	return Vec{X: x, Y: y}
}
