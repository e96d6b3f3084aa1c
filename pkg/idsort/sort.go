package idsort

import "sort"

// sortStepSize bounds the backward scan window. Insertions land near the
// tail of their library group in the common bulk-insert case (rising name
// suffixes), so a small window usually contains the insertion point.
const sortStepSize = 512

// SortByName moves id to its sorted position in lb: grouped by library,
// case-insensitively by name within the group. id must already be linked
// into lb. hint, when non-nil and in the same library group, enables an
// O(1) insert adjacent to it; any valid hint (or none) yields the same
// final ordering.
func SortByName(lb *List, id *ID, hint *ID) {
	if lb.first == lb.last {
		// Zero or one records: already in place.
		return
	}

	lb.Remove(id)

	// Fast path: insert directly before or after the hint when the names
	// bracket correctly within the hint's library group.
	if hint != nil && hint != id && hint.Lib == id.Lib {
		hintNext := hint.next
		if caseCmp(hint.Name, id.Name) < 0 &&
			(hintNext == nil || hintNext.Lib != id.Lib || caseCmp(hintNext.Name, id.Name) > 0) {
			lb.InsertAfter(hint, id)
			return
		}

		hintPrev := hint.prev
		if caseCmp(hint.Name, id.Name) > 0 &&
			(hintPrev == nil || hintPrev.Lib != id.Lib || caseCmp(hintPrev.Name, id.Name) < 0) {
			lb.InsertBefore(hint, id)
			return
		}
	}

	// Find the last record of the expected library, scanning from the
	// tail: bulk insertions cluster there.
	idtest := lb.last
	for idtest != nil && idtest.Lib != id.Lib {
		idtest = idtest.prev
	}

	// No record of this library yet. Local records sort before every
	// linked one, so an absent group means head for local and tail for
	// linked.
	if idtest == nil {
		if id.Lib != nil {
			lb.PushTail(id)
		} else {
			lb.PushHead(id)
		}
		return
	}

	// Walk backward through the group in fixed-size windows until a name
	// at or below the target is seen, then binary-search the window.
	var window [sortStepSize]*ID
	idx := sortStepSize - 1
	for ; idtest != nil && idtest.Lib == id.Lib; idtest = idtest.prev {
		window[idx] = idtest
		if idx == 0 {
			if caseCmp(idtest.Name, id.Name) <= 0 {
				break
			}
			idx = sortStepSize
		}
		idx--
	}

	lo := idx + 1
	k := sort.Search(sortStepSize-lo, func(i int) bool {
		return caseCmp(window[lo+i].Name, id.Name) > 0
	})

	if lo+k == sortStepSize {
		lb.InsertAfter(window[sortStepSize-1], id)
	} else {
		lb.InsertBefore(window[lo+k], id)
	}
}

// caseCmp compares two names byte-wise with ASCII case folding, matching
// strcasecmp ordering.
func caseCmp(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ca, cb := lowerByte(a[i]), lowerByte(b[i])
		if ca != cb {
			return int(ca) - int(cb)
		}
	}
	return len(a) - len(b)
}

func lowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
