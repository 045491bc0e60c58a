package render

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"healthease/internal/geo"
	"healthease/internal/sim"
)

// GeoJSON exports the map objects as a FeatureCollection: one Point per
// object and one LineString per trail with at least two points. GeoJSON
// orders coordinates lng, lat.
func GeoJSON(objects []*sim.MapObject) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, o := range objects {
		f := geojson.NewFeature(toOrb(o.Position))
		f.ID = o.ID
		f.Properties["id"] = o.ID
		f.Properties["kind"] = string(o.Kind)
		f.Properties["label"] = o.Label
		f.Properties["color"] = dotColor(o)
		if o.Icon != "" {
			f.Properties["icon"] = o.Icon
		}
		if o.Meta != nil {
			f.Properties["status"] = o.Meta.Status
		}
		fc.Append(f)

		if len(o.Trail) > 1 {
			line := make(orb.LineString, len(o.Trail))
			for i, p := range o.Trail {
				line[i] = toOrb(p)
			}
			t := geojson.NewFeature(line)
			t.Properties["id"] = o.ID
			t.Properties["kind"] = "trail"
			color, width := trailStyle(o)
			t.Properties["color"] = color
			t.Properties["width"] = width
			fc.Append(t)
		}
	}
	return fc
}

func toOrb(p geo.Point) orb.Point {
	return orb.Point{p.Lng, p.Lat}
}
