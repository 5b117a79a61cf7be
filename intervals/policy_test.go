package intervals

import "testing"

func insert(offset int, n int) Change {
	return Change{Offset: offset, NewLength: n, InitialOffset: offset}
}

func remove(start, end int) Change {
	return Change{Offset: start, OldLength: end - start, InitialOffset: start, InitialOldLength: end - start}
}

func replace(start, end int, n int) Change {
	return Change{Offset: start, OldLength: end - start, NewLength: n, InitialOffset: start,
		InitialOldLength: end - start}
}

type policyCase struct {
	name       string
	change     Change
	start, end int
	flags      Flags
	expStart   int
	expEnd     int
	expValid   bool
}

func runPolicyCases(t *testing.T, cases []policyCase) {
	t.Helper()
	for _, tc := range cases {
		s, e, ok := ApplyChange(tc.change, tc.start, tc.end, tc.flags)
		if ok != tc.expValid {
			t.Errorf("%s: valid = %v, expected %v", tc.name, ok, tc.expValid)
			continue
		}
		if ok && (s != tc.expStart || e != tc.expEnd) {
			t.Errorf("%s: [%d,%d] -> [%d,%d], expected [%d,%d]", tc.name, tc.start, tc.end,
				s, e, tc.expStart, tc.expEnd)
		}
	}
}

func TestShiftLaws(t *testing.T) {
	runPolicyCases(t, []policyCase{
		{"insert before", insert(2, 3), 5, 10, 0, 8, 13, true},
		{"insert at start", insert(5, 3), 5, 10, 0, 8, 13, true},
		{"insert at start greedy", insert(5, 3), 5, 10, GreedyToLeft, 5, 13, true},
		{"insert inside", insert(7, 3), 5, 10, 0, 5, 13, true},
		{"insert at end", insert(10, 3), 5, 10, 0, 5, 10, true},
		{"insert at end greedy", insert(10, 3), 5, 10, GreedyToRight, 5, 13, true},
		{"insert after", insert(12, 3), 5, 10, 0, 5, 10, true},
		{"delete inside", remove(6, 8), 5, 10, 0, 5, 8, true},
		{"delete before", remove(0, 2), 5, 10, 0, 3, 8, true},
		{"delete prefix", remove(3, 7), 5, 10, 0, 3, 6, true},
		{"replace prefix", replace(3, 7, 1), 5, 10, 0, 4, 7, true},
		{"delete suffix", remove(8, 12), 5, 10, 0, 5, 8, true},
		{"delete all", remove(5, 10), 5, 10, 0, 5, 5, true},
		{"delete around", remove(4, 11), 5, 10, 0, 0, 0, false},
		{"replace around", replace(4, 11, 20), 5, 10, 0, 0, 0, false},
	})
}

func TestPointIntervals(t *testing.T) {
	runPolicyCases(t, []policyCase{
		{"insert at point", insert(5, 3), 5, 5, 0, 5, 5, true},
		{"insert at greedy point", insert(5, 3), 5, 5, GreedyToRight, 5, 8, true},
		{"insert at sticky point", insert(5, 3), 5, 5, StickyToRight, 8, 8, true},
		{"insert before point", insert(2, 3), 5, 5, 0, 8, 8, true},
		{"delete before point", remove(2, 5), 5, 5, 0, 2, 2, true},
		{"delete after point", remove(5, 7), 5, 5, 0, 5, 5, true},
		{"delete around point", remove(4, 6), 5, 5, 0, 0, 0, false},
	})
}

// A replace narrowed to its changed bytes may degenerate to an insert at a
// boundary of an interval; the interval then grows instead of being shifted
// or left behind.
func TestNarrowedReplaceAtBoundary(t *testing.T) {
	// "abc" replaced by "abXc" at [0,3) is narrowed to an insert at 2
	atEnd := Change{Offset: 2, NewLength: 1, InitialOffset: 0, InitialOldLength: 3}
	// "abc" replaced by "aXbc" at [1,3) is narrowed to an insert at 1
	atStart := Change{Offset: 1, NewLength: 1, InitialOffset: 1, InitialOldLength: 2}
	runPolicyCases(t, []policyCase{
		{"narrowed at end", atEnd, 0, 2, 0, 0, 3, true},
		{"plain insert at end", insert(2, 1), 0, 2, 0, 0, 2, true},
		{"narrowed at start", atStart, 1, 3, 0, 1, 4, true},
		{"plain insert at start", insert(1, 1), 1, 3, 0, 2, 4, true},
	})
}
