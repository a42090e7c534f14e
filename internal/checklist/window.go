package checklist

// WindowRadius is the number of items shown on each side of the check
// frontier.
const WindowRadius = 5

// Window is the contiguous, 1-based, inclusive range of items to display.
// A zero Window (Start == 0) means there is nothing to show.
type Window struct {
	// LatestChecked is the highest checked index, or 1 when nothing is checked.
	LatestChecked int
	// FirstUnchecked is the lowest unchecked index, or 0 when every item is checked.
	FirstUnchecked int
	Start          int
	End            int
}

// Empty reports whether the window covers no items.
func (w Window) Empty() bool {
	return w.Start == 0
}

// Actionable returns the index of the single item offering a check action
// and whether one exists.
func (w Window) Actionable() (int, bool) {
	return w.FirstUnchecked, w.FirstUnchecked != 0
}

// Contains reports whether the 1-based index falls inside the window.
func (w Window) Contains(index int) bool {
	return !w.Empty() && index >= w.Start && index <= w.End
}

// Len returns the number of items in the window.
func (w Window) Len() int {
	if w.Empty() {
		return 0
	}
	return w.End - w.Start + 1
}

// SelectWindow computes the display window from a checked vector.
//
// start = max(latestChecked-5, 1) and end = min(anchor+5, N), where anchor is
// firstUnchecked, or latestChecked when everything is checked. A vector with
// a checked item after a gap can put latestChecked-5 past firstUnchecked; start
// is then pulled back to firstUnchecked so the actionable item stays visible.
func SelectWindow(checked []bool) Window {
	n := len(checked)
	if n == 0 {
		return Window{}
	}

	w := Window{LatestChecked: 1}
	for i, c := range checked {
		if c {
			w.LatestChecked = i + 1
		} else if w.FirstUnchecked == 0 {
			w.FirstUnchecked = i + 1
		}
	}

	anchor := w.LatestChecked
	if w.FirstUnchecked != 0 {
		anchor = w.FirstUnchecked
	}

	w.Start = max(w.LatestChecked-WindowRadius, 1)
	w.End = min(anchor+WindowRadius, n)

	if w.FirstUnchecked != 0 && w.Start > w.FirstUnchecked {
		w.Start = w.FirstUnchecked
	}

	return w
}

// Window computes the display window for the current state.
func (s *State) Window() Window {
	return SelectWindow(s.checked)
}
