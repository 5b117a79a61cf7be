package textdoc

import (
	"math"
	"slices"
	"sync"
)

// Listener is notified about modifications of a document.
//
// BeforeChange is called before the text is modified, Changed after the
// text, the line index and the range markers have been updated. Errors
// returned by a listener are logged, except for cancellations (see
// ErrCanceled), which are returned to the caller of the modification after
// all listeners have been notified.
//
// Listeners must not modify the document; attempts to do so are rejected with
// ErrNestedModification.
type Listener interface {
	BeforeChange(e *Event) error
	Changed(e *Event) error
}

// PrioritizedListener is a listener with a priority. Listeners are told
// about a change in ascending order of priority, and about an imminent change
// in descending order. Listeners without a priority come last.
type PrioritizedListener interface {
	Listener
	Priority() int
}

// BulkListener is implemented by listeners interested in bulk mode changes.
type BulkListener interface {
	BulkUpdateStarting(d *Document) error
	BulkUpdateFinished(d *Document) error
}

// MoveListener is implemented by listeners interested in text moves. It is
// called after the moved text has been inserted at newBase and before it is
// deleted from [start,end).
type MoveListener interface {
	MoveTextHappened(d *Document, start, end, newBase int)
}

// Listener priorities.
const (
	// PriorityRangeMarker is the priority of the range marker trees of a
	// document.
	PriorityRangeMarker = 40
	// PriorityDefault is the priority of listeners without a priority.
	PriorityDefault = math.MaxInt32
)

// ListenerFuncs adapts functions to the Listener interface. Nil functions are
// skipped.
type ListenerFuncs struct {
	Before func(e *Event) error
	After  func(e *Event) error
	Prio   int // priority, 0 means PriorityDefault
}

// BeforeChange is part of interface Listener.
func (lf ListenerFuncs) BeforeChange(e *Event) error {
	if lf.Before == nil {
		return nil
	}
	return lf.Before(e)
}

// Changed is part of interface Listener.
func (lf ListenerFuncs) Changed(e *Event) error {
	if lf.After == nil {
		return nil
	}
	return lf.After(e)
}

// Priority is part of interface PrioritizedListener.
func (lf ListenerFuncs) Priority() int {
	if lf.Prio == 0 {
		return PriorityDefault
	}
	return lf.Prio
}

// AddListener registers l with the document. The returned function removes
// the registration again.
func (d *Document) AddListener(l Listener) (remove func()) {
	return d.listeners.add(l)
}

// --- Registry --------------------------------------------------------------

type registration struct {
	id       uint64
	listener Listener
	priority int
}

// listenerList is a list of listeners sorted by priority. The slice of
// registrations is replaced on every change, so a snapshot may be iterated
// while listeners are added or removed.
type listenerList struct {
	mu     sync.Mutex
	regs   []registration
	nextID uint64
}

func priorityOf(l Listener) int {
	if p, ok := l.(PrioritizedListener); ok {
		return p.Priority()
	}
	return PriorityDefault
}

func (ll *listenerList) add(l Listener) func() {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.nextID++
	reg := registration{id: ll.nextID, listener: l, priority: priorityOf(l)}
	at := len(ll.regs)
	for i, r := range ll.regs {
		if r.priority > reg.priority {
			at = i
			break
		}
	}
	ll.regs = slices.Insert(slices.Clone(ll.regs), at, reg)
	id := reg.id
	return func() { ll.remove(id) }
}

func (ll *listenerList) remove(id uint64) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	i := slices.IndexFunc(ll.regs, func(r registration) bool { return r.id == id })
	if i >= 0 {
		ll.regs = slices.Delete(slices.Clone(ll.regs), i, i+1)
	}
}

func (ll *listenerList) snapshot() []registration {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	return ll.regs
}

// --- Dispatch --------------------------------------------------------------

// callListener calls f, converting a panic to an error.
func callListener(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return f()
}

func (d *Document) fireBeforeChange(e *Event, delayed *delayedErrors) {
	regs := d.listeners.snapshot()
	for i := len(regs) - 1; i >= 0; i-- {
		l := regs[i].listener
		delayed.register(callListener(func() error { return l.BeforeChange(e) }), "before change")
	}
}

func (d *Document) fireChanged(e *Event, delayed *delayedErrors) {
	for _, r := range d.listeners.snapshot() {
		l := r.listener
		delayed.register(callListener(func() error { return l.Changed(e) }), "after change")
	}
}

func (d *Document) fireMoveText(start, end, newBase int) {
	for _, r := range d.listeners.snapshot() {
		if ml, ok := r.listener.(MoveListener); ok {
			ml.MoveTextHappened(d, start, end, newBase)
		}
	}
}
