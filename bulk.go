package textdoc

// BulkUpdate is published on a document's publisher (see WithPublisher)
// when bulk mode is entered or left.
type BulkUpdate struct {
	Document *Document
	Started  bool // false if bulk mode has been left
}

// IsInBulkUpdate reports whether the document is in bulk mode.
func (d *Document) IsInBulkUpdate() bool {
	return d.bulk.Load()
}

// SetInBulkUpdate enters or leaves bulk mode. Bulk mode tells listeners that
// many modifications are to follow, letting them defer expensive work until
// bulk mode is left. Listeners implementing BulkListener are notified, in
// reverse order when bulk mode is entered and in order when it is left.
//
// Bulk mode must not be toggled from a bulk listener; this is rejected with
// ErrBulkReentry.
func (d *Document) SetInBulkUpdate(value bool) error {
	if d.bulkToggling {
		return ErrBulkReentry
	}
	if d.bulk.Load() == value {
		return nil
	}
	d.bulkToggling = true
	defer func() { d.bulkToggling = false }()
	T().Infof("textdoc: bulk mode = %v", value)
	if value {
		d.publish(BulkUpdate{Document: d, Started: true})
		d.fireBulkStarting()
		d.bulk.Store(true)
	} else {
		d.bulk.Store(false)
		d.fireBulkFinished()
		d.publish(BulkUpdate{Document: d, Started: false})
	}
	return nil
}

// ExecuteInBulk runs f in bulk mode. If the document already is in bulk
// mode, f is simply called. Bulk mode is left even if f panics.
func (d *Document) ExecuteInBulk(f func() error) (err error) {
	if d.bulk.Load() {
		return f()
	}
	if err := d.SetInBulkUpdate(true); err != nil {
		return err
	}
	defer func() {
		if e := d.SetInBulkUpdate(false); err == nil {
			err = e
		}
	}()
	return f()
}

func (d *Document) publish(msg BulkUpdate) {
	if d.conf.publisher != nil {
		d.conf.publisher.Pub(msg)
	}
}

func (d *Document) fireBulkStarting() {
	regs := d.listeners.snapshot()
	for i := len(regs) - 1; i >= 0; i-- {
		if bl, ok := regs[i].listener.(BulkListener); ok {
			if err := callListener(func() error { return bl.BulkUpdateStarting(d) }); err != nil {
				T().Errorf("textdoc: bulk update starting: %v", err)
			}
		}
	}
}

func (d *Document) fireBulkFinished() {
	for _, r := range d.listeners.snapshot() {
		if bl, ok := r.listener.(BulkListener); ok {
			if err := callListener(func() error { return bl.BulkUpdateFinished(d) }); err != nil {
				T().Errorf("textdoc: bulk update finished: %v", err)
			}
		}
	}
}
