package sim

import (
	"math/rand"
	"time"

	"healthease/internal/geo"
)

// Options configures a Context. Zero values are replaced with defaults.
type Options struct {
	Rand     *rand.Rand
	Notifier Notifier
	Now      func() time.Time
}

// Context is one map session: the object registry, the active sessions, the
// last known user location and the cached bounds.
type Context struct {
	registry   *Registry
	dispatches map[string]*DispatchSession
	order      []string
	delivery   *DeliverySession
	user       *geo.Point

	bounds      geo.BoundingBox
	boundsDirty bool

	rng      *rand.Rand
	notifier Notifier
	now      func() time.Time
}

func NewContext(opts Options) *Context {
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Notifier == nil {
		opts.Notifier = discardNotifier{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Context{
		registry:    NewRegistry(),
		dispatches:  make(map[string]*DispatchSession),
		rng:         opts.Rand,
		notifier:    opts.Notifier,
		now:         opts.Now,
		bounds:      geo.DefaultBounds,
		boundsDirty: true,
	}
}

// Objects returns the registry contents in draw order. Callers must not keep
// the slice past the current lock scope.
func (c *Context) Objects() []*MapObject {
	return c.registry.All()
}

// Object returns the object with the given id.
func (c *Context) Object(id string) (*MapObject, bool) {
	return c.registry.Get(id)
}

// Bounds returns the current bounds, recomputing them if the object set
// changed since the last call. Moving objects alone do not invalidate them.
func (c *Context) Bounds() geo.BoundingBox {
	if c.boundsDirty {
		c.bounds = geo.BoundsOf(c.registry.Positions())
		c.boundsDirty = false
	}
	return c.bounds
}

// UserLocation returns the last location set with SetUserLocation.
func (c *Context) UserLocation() (geo.Point, bool) {
	if c.user == nil {
		return geo.Point{}, false
	}
	return *c.user, true
}

// SetUserLocation records p as the default dispatch target and shows it on
// the map.
func (c *Context) SetUserLocation(p geo.Point) {
	c.user = &p
	obj, ok := c.registry.Get(UserObjectID)
	if !ok {
		obj = &MapObject{ID: UserObjectID, Kind: KindUser, Label: "You", Color: ColorUser}
		c.registry.Put(obj)
	}
	obj.Position = p
	c.boundsDirty = true
}

// Session returns a copy of the active dispatch for ambulanceID.
func (c *Context) Session(ambulanceID string) (DispatchSession, bool) {
	s, ok := c.dispatches[ambulanceID]
	if !ok {
		return DispatchSession{}, false
	}
	return *s, true
}

// Sessions returns copies of the active dispatches in dispatch order.
func (c *Context) Sessions() []DispatchSession {
	out := make([]DispatchSession, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, *c.dispatches[id])
	}
	return out
}

// IsActive reports whether ambulanceID has an active dispatch.
func (c *Context) IsActive(ambulanceID string) bool {
	_, ok := c.dispatches[ambulanceID]
	return ok
}

// Delivery returns a copy of the delivery session, if any.
func (c *Context) Delivery() (DeliverySession, bool) {
	if c.delivery == nil {
		return DeliverySession{}, false
	}
	return *c.delivery, true
}

// Active reports whether anything is moving.
func (c *Context) Active() bool {
	return len(c.dispatches) > 0 || (c.delivery != nil && c.delivery.Running)
}

func (c *Context) notify(text string, transient bool) {
	c.notifier.Notify(Notice{Text: text, Transient: transient, At: c.now()})
}

func (c *Context) removeDispatch(id string) {
	delete(c.dispatches, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
