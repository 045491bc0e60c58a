package render

// Op is one drawing command. Args holds the numeric operands in the order of
// the matching Surface method.
type Op struct {
	Op     string    `json:"op"`
	Args   []float64 `json:"args,omitempty"`
	Points []Vec     `json:"points,omitempty"`
	Color  string    `json:"color,omitempty"`
	Href   string    `json:"href,omitempty"`
	Text   string    `json:"text,omitempty"`
	Font   string    `json:"font,omitempty"`
}

// DisplayList records drawing commands for a browser canvas to replay.
type DisplayList struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Ops    []Op    `json:"ops"`
}

func NewDisplayList(w, h float64) *DisplayList {
	return &DisplayList{Width: w, Height: h}
}

func (d *DisplayList) Size() (float64, float64) { return d.Width, d.Height }

func (d *DisplayList) Clear() {
	d.Ops = d.Ops[:0]
	d.Ops = append(d.Ops, Op{Op: "clear"})
}

func (d *DisplayList) FillRect(x, y, w, h float64, color string) {
	d.Ops = append(d.Ops, Op{Op: "rect", Args: []float64{x, y, w, h}, Color: color})
}

func (d *DisplayList) Line(x1, y1, x2, y2 float64, color string, width float64) {
	d.Ops = append(d.Ops, Op{Op: "line", Args: []float64{x1, y1, x2, y2, width}, Color: color})
}

func (d *DisplayList) Polyline(pts []Vec, color string, width float64) {
	d.Ops = append(d.Ops, Op{Op: "polyline", Args: []float64{width}, Points: pts, Color: color})
}

func (d *DisplayList) Circle(x, y, r float64, color string) {
	d.Ops = append(d.Ops, Op{Op: "circle", Args: []float64{x, y, r}, Color: color})
}

func (d *DisplayList) Image(href string, x, y, size float64) {
	d.Ops = append(d.Ops, Op{Op: "image", Args: []float64{x, y, size}, Href: href})
}

func (d *DisplayList) Text(x, y float64, text, font, color string) {
	d.Ops = append(d.Ops, Op{Op: "text", Args: []float64{x, y}, Text: text, Font: font, Color: color})
}
