package session

import (
	"fmt"

	"github.com/AntoineGS/ticklist/internal/checklist"
	"github.com/AntoineGS/ticklist/internal/config"
	"github.com/AntoineGS/ticklist/internal/source"
)

// RowStatus is how a row in the window is presented.
type RowStatus int

// Row statuses.
const (
	// RowPending is not yet checked and not actionable
	RowPending RowStatus = iota
	// RowActionable is the first unchecked item, the only one offering a check
	RowActionable
	// RowDone is checked
	RowDone
)

func (r RowStatus) String() string {
	switch r {
	case RowPending:
		return "pending"
	case RowActionable:
		return "actionable"
	case RowDone:
		return "done"
	}

	return "unknown"
}

// Row is one item inside the display window.
type Row struct {
	Text   string
	Detail string
	Fields []source.Field
	Index  int
	Status RowStatus
	// Highlight marks the row targeted by the last jump
	Highlight bool
}

// View is a projection of the session for rendering. It is recomputed from
// the state on every call and holds no references into it.
type View struct {
	Source        string
	Rows          []Row
	Window        checklist.Window
	Total         int
	Remaining     int
	Actionable    int
	Loaded        bool
	Complete      bool
	Focused       bool
	ShowDetails   bool
	HasAttributes bool
}

// View projects the current state into a View.
func (s *Session) View() View {
	v := View{
		Source:        s.origin,
		ShowDetails:   s.showDetails,
		HasAttributes: s.lookup != nil,
	}
	if s.state == nil {
		return v
	}

	w := s.state.Window()
	v.Loaded = true
	v.Window = w
	v.Total = s.state.Len()
	v.Remaining = s.state.Remaining()
	v.Complete = s.state.Complete()
	v.Actionable, _ = w.Actionable()

	if w.Empty() {
		return v
	}

	// A scroll-mode jump shows the rows around the target instead of the
	// frontier; Window still describes the frontier.
	start, end := w.Start, w.End
	if s.jumpMode == config.JumpScroll && s.highlight != 0 {
		start = max(s.highlight-checklist.WindowRadius, 1)
		end = min(s.highlight+checklist.WindowRadius, v.Total)
		v.Focused = true
	}

	checked := s.state.Checked()
	items := s.state.Items()

	v.Rows = make([]Row, 0, end-start+1)
	for idx := start; idx <= end; idx++ {
		item := items[idx-1]
		row := Row{
			Index:     idx,
			Text:      item.Text,
			Highlight: s.highlight == idx,
		}

		switch {
		case checked[idx-1]:
			row.Status = RowDone
		case idx == v.Actionable:
			row.Status = RowActionable
		default:
			row.Status = RowPending
		}

		if rec, ok := s.lookup.Find(item.Text); ok {
			row.Fields = rec.Fields
			if s.showDetails {
				row.Detail = s.renderDetail(rec)
			}
		}

		v.Rows = append(v.Rows, row)
	}

	return v
}

func (s *Session) renderDetail(rec source.Record) string {
	text, err := s.detail.Render(rec)
	if err != nil {
		return fmt.Sprintf("(detail unavailable: %v)", err)
	}
	return text
}
