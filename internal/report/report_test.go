package report

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/AntoineGS/ticklist/internal/session"
	"github.com/AntoineGS/ticklist/internal/source"
	"github.com/sebdah/goldie/v2"
)

func newSession(t *testing.T, texts []string) *session.Session {
	t.Helper()
	s := session.New(session.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.LoadItems(texts, "/home/user/lists/stations.csv")
	return s
}

func stations(n int) []string {
	names := []string{
		"Tokyo", "Kanda", "Akihabara", "Okachimachi", "Ueno",
		"Uguisudani", "Nippori", "Nishi-Nippori", "Tabata", "Komagome",
		"Sugamo", "Otsuka", "Ikebukuro", "Mejiro", "Takadanobaba",
		"Shin-Okubo", "Shinjuku", "Yoyogi", "Harajuku", "Shibuya",
	}
	return names[:n]
}

func TestRender_Snapshots(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) session.View
	}{
		{"report_fresh", func(t *testing.T) session.View {
			return newSession(t, stations(10)).View()
		}},
		{"report_frontier", func(t *testing.T) session.View {
			s := newSession(t, stations(20))
			if err := s.JumpTo(16); err != nil {
				t.Fatal(err)
			}
			return s.View()
		}},
		{"report_complete", func(t *testing.T) session.View {
			s := newSession(t, stations(8))
			for i := 0; i < 8; i++ {
				if _, err := s.CheckCurrent(); err != nil {
					t.Fatal(err)
				}
			}
			return s.View()
		}},
		{"report_details", func(t *testing.T) session.View {
			s := newSession(t, stations(3))
			l, err := source.ReadAttributes(strings.NewReader("name,line,opened\nTokyo,Yamanote,1914\nAkihabara,Sobu,1890\n"), "name")
			if err != nil {
				t.Fatal(err)
			}
			s.LoadAttributes(l)
			s.ToggleDetails()
			_, _ = s.CheckCurrent()
			return s.View()
		}},
		{"report_empty", func(t *testing.T) session.View {
			return newSession(t, []string{}).View()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := String(tt.setup(t))

			g := goldie.New(t)
			g.Assert(t, tt.name, []byte(output))
		})
	}
}

func TestRender_NotLoaded(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, session.View{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No list loaded.\n" {
		t.Errorf("Render = %q", buf.String())
	}
}

func TestRender_HighlightMarker(t *testing.T) {
	v := session.View{
		Loaded:    true,
		Total:     3,
		Remaining: 3,
		Rows: []session.Row{
			{Index: 1, Text: "a", Status: session.RowActionable},
			{Index: 2, Text: "b", Status: session.RowPending, Highlight: true},
		},
	}

	want := "Remaining: 3 of 3\n\n> [ ] 1. a\n* [ ] 2. b\n"
	if got := String(v); got != want {
		t.Errorf("String() =\n%q\nwant\n%q", got, want)
	}
}
