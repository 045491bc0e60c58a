package sim

import "healthease/internal/geo"

// Registry is an ordered collection of map objects. Draw order is insertion
// order.
type Registry struct {
	objects []*MapObject
	byID    map[string]*MapObject
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*MapObject)}
}

func (r *Registry) Get(id string) (*MapObject, bool) {
	o, ok := r.byID[id]
	return o, ok
}

// Put adds o, or replaces the object with the same id in place.
func (r *Registry) Put(o *MapObject) {
	if _, exists := r.byID[o.ID]; exists {
		for i, cur := range r.objects {
			if cur.ID == o.ID {
				r.objects[i] = o
				break
			}
		}
	} else {
		r.objects = append(r.objects, o)
	}
	r.byID[o.ID] = o
}

// Remove deletes id and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	if _, exists := r.byID[id]; !exists {
		return false
	}
	delete(r.byID, id)
	for i, o := range r.objects {
		if o.ID == id {
			r.objects = append(r.objects[:i], r.objects[i+1:]...)
			break
		}
	}
	return true
}

// RemoveIf deletes every object for which drop returns true and returns how
// many were removed.
func (r *Registry) RemoveIf(drop func(*MapObject) bool) int {
	kept := r.objects[:0]
	removed := 0
	for _, o := range r.objects {
		if drop(o) {
			delete(r.byID, o.ID)
			removed++
			continue
		}
		kept = append(kept, o)
	}
	for i := len(kept); i < len(r.objects); i++ {
		r.objects[i] = nil
	}
	r.objects = kept
	return removed
}

// All returns the objects in draw order. The slice must not be modified.
func (r *Registry) All() []*MapObject {
	return r.objects
}

// Positions returns the current position of every object.
func (r *Registry) Positions() []geo.Point {
	pts := make([]geo.Point, len(r.objects))
	for i, o := range r.objects {
		pts[i] = o.Position
	}
	return pts
}
