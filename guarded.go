package textdoc

import "slices"

// CreateGuardedBlock creates a guarded block for the text between start and
// end. Modifications touching a guarded block are rejected with a
// GuardedRegionError while guarded block checking is active.
//
// Guarded blocks are persistent range markers and follow modifications of the
// text like these.
func (d *Document) CreateGuardedBlock(start, end int) (*RangeMarker, error) {
	m, err := d.CreateRangeMarkerPersistent(start, end, true)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.guards = append(d.guards, m)
	d.mu.Unlock()
	return m, nil
}

// RemoveGuardedBlock removes block from the guarded blocks of the document.
// The block stays valid as a range marker.
func (d *Document) RemoveGuardedBlock(block *RangeMarker) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.guards = slices.DeleteFunc(slices.Clone(d.guards), func(m *RangeMarker) bool { return m == block })
}

// GuardedBlocks returns the guarded blocks of the document.
func (d *Document) GuardedBlocks() []*RangeMarker {
	return slices.Clone(d.guardList())
}

// guardList returns the current list of guarded blocks. The list is never
// modified in place and may be iterated without holding the lock.
func (d *Document) guardList() []*RangeMarker {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.guards
}

// OffsetGuard returns the guarded block containing offset, or nil.
func (d *Document) OffsetGuard(offset int) *RangeMarker {
	for _, block := range d.guardList() {
		if start, end := block.Range(); start <= offset && offset < end {
			return block
		}
	}
	return nil
}

// RangeGuard returns a guarded block intersecting the edit window
// [start,end], or nil. Both ends of the window are inclusive, while the
// bounds of a block are inclusive only if the block is greedy at them.
func (d *Document) RangeGuard(start, end int) *RangeMarker {
	for _, block := range d.guardList() {
		if !block.IsValid() {
			continue
		}
		bs, be := block.Range()
		if rangesIntersect(start, end, true, true, bs, be, block.IsGreedyToLeft(), block.IsGreedyToRight()) {
			return block
		}
	}
	return nil
}

func rangesIntersect(start0, end0 int, start0Incl, end0Incl bool,
	start1, end1 int, start1Incl, end1Incl bool) bool {
	//
	if start0 > start1 || start0 == start1 && !start0Incl {
		if end1 == start0 {
			return start0Incl && end1Incl
		}
		return end1 > start0
	}
	if end0 == start1 {
		return start1Incl && end0Incl
	}
	return end0 > start1
}

// StartGuardedBlockChecking activates the checking of guarded blocks.
// Calls nest and have to be paired with StopGuardedBlockChecking. Checking is
// active for new documents unless they have been created with
// WithoutGuardedBlockChecking.
func (d *Document) StartGuardedBlockChecking() {
	d.guardChecks++
}

// StopGuardedBlockChecking reverts a call to StartGuardedBlockChecking.
func (d *Document) StopGuardedBlockChecking() error {
	if d.guardChecks == 0 {
		return ErrUnpairedGuardCheck
	}
	d.guardChecks--
	return nil
}

// SuppressGuardedExceptions lets modifications of guarded blocks pass,
// independent of the nesting of guarded block checking.
func (d *Document) SuppressGuardedExceptions() {
	d.guardsSuppressed = true
}

// UnsuppressGuardedExceptions reverts SuppressGuardedExceptions.
func (d *Document) UnsuppressGuardedExceptions() {
	d.guardsSuppressed = false
}

// checkGuards rejects a modification replacing old at [start,end) by inserted if
// it touches a guarded block.
func (d *Document) checkGuards(start, end int, old, inserted string) error {
	if d.guardChecks == 0 || d.guardsSuppressed {
		return nil
	}
	block := d.RangeGuard(start, end)
	if block == nil {
		return nil
	}
	e := d.newEvent(start, old, inserted, false, start, len(old))
	T().Debugf("textdoc: %s rejected by guarded block %s", e, block)
	return &GuardedRegionError{Event: e, Block: block}
}
