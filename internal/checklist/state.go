// Package checklist holds the checked-state model of an ordered item list
// and the window selection that decides which items are shown.
package checklist

// Item is one entry of the loaded list. Index is 1-based and is the item's
// identity for the lifetime of the list.
type Item struct {
	Text  string
	Index int
}

// State owns the ordered items and the parallel checked vector.
// len(checked) == len(items) always holds. State is not safe for
// concurrent use; one session owns it.
type State struct {
	items   []Item
	checked []bool
}

// NewState builds a State from item texts in order, with nothing checked.
func NewState(texts []string) *State {
	items := make([]Item, len(texts))
	for i, t := range texts {
		items[i] = Item{Index: i + 1, Text: t}
	}

	s := &State{items: items}
	s.initialize(len(items))

	return s
}

func (s *State) initialize(n int) {
	s.checked = make([]bool, n)
}

// Len returns the number of items.
func (s *State) Len() int {
	return len(s.items)
}

// Items returns a copy of the items.
func (s *State) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Texts returns the item texts in order.
func (s *State) Texts() []string {
	out := make([]string, len(s.items))
	for i, it := range s.items {
		out[i] = it.Text
	}
	return out
}

// Item returns the item at the 1-based index.
func (s *State) Item(index int) (Item, error) {
	if err := s.validIndex("item", index); err != nil {
		return Item{}, err
	}
	return s.items[index-1], nil
}

// Checked returns a copy of the checked vector.
func (s *State) Checked() []bool {
	out := make([]bool, len(s.checked))
	copy(out, s.checked)
	return out
}

// IsChecked reports whether the item at the 1-based index is checked.
func (s *State) IsChecked(index int) (bool, error) {
	if err := s.validIndex("is-checked", index); err != nil {
		return false, err
	}
	return s.checked[index-1], nil
}

// Restore replaces the checked vector with snapshot when the lengths agree.
// On a mismatch the state is left untouched and a *LengthMismatchError is
// returned.
func (s *State) Restore(snapshot []bool) error {
	if len(snapshot) != len(s.items) {
		return &LengthMismatchError{Got: len(snapshot), Want: len(s.items)}
	}

	copy(s.checked, snapshot)

	return nil
}

// Check marks a single 1-based index as checked. Checking an already
// checked item is a no-op.
func (s *State) Check(index int) error {
	if err := s.validIndex("check", index); err != nil {
		return err
	}

	s.checked[index-1] = true

	return nil
}

// CheckPrefix marks every index in [1, upto-1] as checked. upto itself is
// left alone.
func (s *State) CheckPrefix(upto int) error {
	if err := s.validIndex("check-prefix", upto); err != nil {
		return err
	}

	for i := 0; i < upto-1; i++ {
		s.checked[i] = true
	}

	return nil
}

// Reset clears every checked entry.
func (s *State) Reset() {
	for i := range s.checked {
		s.checked[i] = false
	}
}

// Remaining counts the unchecked entries.
func (s *State) Remaining() int {
	n := 0
	for _, c := range s.checked {
		if !c {
			n++
		}
	}
	return n
}

// Complete reports whether every item is checked. An empty list is never
// complete.
func (s *State) Complete() bool {
	return len(s.items) > 0 && s.Remaining() == 0
}

func (s *State) validIndex(op string, index int) error {
	if index < 1 || index > len(s.items) {
		return NewIndexError(op, index, len(s.items))
	}
	return nil
}
