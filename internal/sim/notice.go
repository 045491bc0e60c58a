package sim

import "time"

// Notice is a banner message for whoever watches the map. Transient notices
// are meant to disappear after a few seconds; persistent ones stay until
// replaced.
type Notice struct {
	Text      string    `json:"text"`
	Transient bool      `json:"transient"`
	At        time.Time `json:"at"`
}

// Notifier receives notices as they are emitted. Notify is called with the
// simulation lock held and must not call back into the Context.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}
