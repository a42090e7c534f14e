package session

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/AntoineGS/ticklist/internal/checklist"
	"github.com/AntoineGS/ticklist/internal/config"
	"github.com/AntoineGS/ticklist/internal/source"
	"github.com/AntoineGS/ticklist/internal/state"
	"github.com/google/go-cmp/cmp"
)

var fixedNow = time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func numbered(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "item " + string(rune('A'+i%26))
	}
	return out
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	base := []Option{WithLogger(quietLogger()), WithClock(func() time.Time { return fixedNow })}
	return New(append(base, opts...)...)
}

func newTestStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() }) //nolint:errcheck // cleanup is best-effort
	return store
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSession_ActionsBeforeLoad(t *testing.T) {
	s := newTestSession(t)

	if s.Loaded() {
		t.Fatal("new session should have no list")
	}
	if _, err := s.CheckCurrent(); !errors.Is(err, ErrNoList) {
		t.Errorf("CheckCurrent err = %v, want ErrNoList", err)
	}
	if err := s.JumpTo(1); !errors.Is(err, ErrNoList) {
		t.Errorf("JumpTo err = %v, want ErrNoList", err)
	}
	if err := s.Reset(); !errors.Is(err, ErrNoList) {
		t.Errorf("Reset err = %v, want ErrNoList", err)
	}
	if err := s.ExportSnapshot(io.Discard); !errors.Is(err, ErrNoList) {
		t.Errorf("ExportSnapshot err = %v, want ErrNoList", err)
	}
	if _, err := s.ImportSnapshot(strings.NewReader("[]")); !errors.Is(err, ErrNoList) {
		t.Errorf("ImportSnapshot err = %v, want ErrNoList", err)
	}

	v := s.View()
	if v.Loaded || len(v.Rows) != 0 {
		t.Errorf("View before load = %+v", v)
	}
}

func TestSession_CheckCurrentWalksTheList(t *testing.T) {
	s := newTestSession(t)
	s.LoadItems(numbered(3), "")

	for want := 1; want <= 3; want++ {
		got, err := s.CheckCurrent()
		if err != nil {
			t.Fatalf("CheckCurrent: %v", err)
		}
		if got != want {
			t.Errorf("CheckCurrent = %d, want %d", got, want)
		}
	}

	got, err := s.CheckCurrent()
	if err != nil || got != 0 {
		t.Errorf("CheckCurrent on complete list = %d, %v, want 0, nil", got, err)
	}
	if !s.View().Complete {
		t.Error("view should report complete")
	}
}

func TestSession_EmptyList(t *testing.T) {
	s := newTestSession(t)
	s.LoadItems([]string{}, "")

	v := s.View()
	if !v.Loaded || v.Total != 0 || v.Actionable != 0 || len(v.Rows) != 0 || v.Complete {
		t.Errorf("empty-list view = %+v", v)
	}
	if got, err := s.CheckCurrent(); got != 0 || err != nil {
		t.Errorf("CheckCurrent = %d, %v", got, err)
	}
	if err := s.JumpTo(1); !errors.Is(err, checklist.ErrIndexOutOfRange) {
		t.Errorf("JumpTo(1) on empty list = %v, want ErrIndexOutOfRange", err)
	}
}

func TestSession_View(t *testing.T) {
	s := newTestSession(t)
	s.LoadItems(numbered(20), "/lists/a.csv")
	if err := s.JumpTo(16); err != nil {
		t.Fatal(err)
	}

	v := s.View()
	if v.Window.Start != 10 || v.Window.End != 20 {
		t.Fatalf("window = [%d,%d], want [10,20]", v.Window.Start, v.Window.End)
	}
	if v.Total != 20 || v.Remaining != 5 || v.Actionable != 16 {
		t.Errorf("view counts = total %d remaining %d actionable %d", v.Total, v.Remaining, v.Actionable)
	}
	if len(v.Rows) != 11 {
		t.Fatalf("len(Rows) = %d, want 11", len(v.Rows))
	}

	for _, r := range v.Rows {
		var want RowStatus
		switch {
		case r.Index < 16:
			want = RowDone
		case r.Index == 16:
			want = RowActionable
		default:
			want = RowPending
		}
		if r.Status != want {
			t.Errorf("row %d status = %v, want %v", r.Index, r.Status, want)
		}
		if r.Highlight != (r.Index == 16) {
			t.Errorf("row %d highlight = %v", r.Index, r.Highlight)
		}
	}
	if v.Source != "/lists/a.csv" {
		t.Errorf("Source = %q", v.Source)
	}
}

func TestSession_JumpScrollMode(t *testing.T) {
	cfg := config.Default()
	cfg.JumpMode = config.JumpScroll
	s := newTestSession(t, WithConfig(cfg))
	s.LoadItems(numbered(30), "")

	if err := s.JumpTo(20); err != nil {
		t.Fatal(err)
	}

	v := s.View()
	if v.Remaining != 30 {
		t.Errorf("scroll jump checked items: Remaining = %d", v.Remaining)
	}
	if !v.Focused || v.Rows[0].Index != 15 || v.Rows[len(v.Rows)-1].Index != 25 {
		t.Errorf("focused rows = %d..%d, focused %v", v.Rows[0].Index, v.Rows[len(v.Rows)-1].Index, v.Focused)
	}
	if v.Actionable != 1 {
		t.Errorf("Actionable = %d, want 1", v.Actionable)
	}

	if _, err := s.CheckCurrent(); err != nil {
		t.Fatal(err)
	}
	if s.View().Focused {
		t.Error("checking should return the view to the frontier")
	}

	if err := s.JumpTo(31); !errors.Is(err, checklist.ErrIndexOutOfRange) {
		t.Errorf("JumpTo(31) = %v, want ErrIndexOutOfRange", err)
	}
}

func TestSession_Reset(t *testing.T) {
	s := newTestSession(t)
	s.LoadItems(numbered(10), "")
	_ = s.JumpTo(6)

	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	v := s.View()
	if v.Remaining != 10 || v.Actionable != 1 {
		t.Errorf("after reset remaining %d actionable %d", v.Remaining, v.Actionable)
	}
	for _, r := range v.Rows {
		if r.Highlight {
			t.Errorf("row %d still highlighted after reset", r.Index)
		}
	}
}

func TestSession_ExportImport(t *testing.T) {
	s := newTestSession(t)
	s.LoadItems(numbered(5), "")
	_ = s.JumpTo(4)

	var buf bytes.Buffer
	if err := s.ExportSnapshot(&buf); err != nil {
		t.Fatalf("ExportSnapshot: %v", err)
	}
	if !strings.Contains(buf.String(), `"exported_at": "2024-04-01T09:30:00Z"`) {
		t.Errorf("export missing timestamp:\n%s", buf.String())
	}

	other := newTestSession(t)
	other.LoadItems(numbered(5), "")
	applied, err := other.ImportSnapshot(&buf)
	if err != nil || !applied {
		t.Fatalf("ImportSnapshot = %v, %v", applied, err)
	}
	if diff := cmp.Diff(s.State().Checked(), other.State().Checked()); diff != "" {
		t.Errorf("imported state differs:\n%s", diff)
	}
}

// Scenario E through the session: a short snapshot is a warning only.
func TestSession_ImportLengthMismatchWarns(t *testing.T) {
	s := newTestSession(t)
	s.LoadItems(numbered(10), "")
	_, _ = s.CheckCurrent()
	before := s.State().Checked()

	applied, err := s.ImportSnapshot(strings.NewReader("[true,true,true,true,true,true,true,true,true]"))
	if err != nil {
		t.Fatalf("ImportSnapshot err = %v, want nil", err)
	}
	if applied {
		t.Error("mismatched snapshot should not be applied")
	}
	if diff := cmp.Diff(before, s.State().Checked()); diff != "" {
		t.Errorf("state changed:\n%s", diff)
	}

	warnings := s.TakeWarnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0].Message, "9 entries, list has 10") {
		t.Errorf("warnings = %v", warnings)
	}
	if len(s.TakeWarnings()) != 0 {
		t.Error("TakeWarnings should clear warnings")
	}
}

func TestSession_ImportMalformed(t *testing.T) {
	s := newTestSession(t)
	s.LoadItems(numbered(2), "")

	_, err := s.ImportSnapshot(strings.NewReader("not json"))
	if !errors.Is(err, checklist.ErrInvalidSnapshot) {
		t.Errorf("err = %v, want ErrInvalidSnapshot", err)
	}
}

func TestSession_LoadItemsFileRejectsMalformedAndKeepsState(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", "a\nb\nc\n")
	bad := writeFile(t, dir, "bad.csv", "a,b\n")

	s := newTestSession(t)
	if err := s.LoadItemsFile(good); err != nil {
		t.Fatal(err)
	}
	_, _ = s.CheckCurrent()

	err := s.LoadItemsFile(bad)
	if !errors.Is(err, source.ErrMalformedSource) {
		t.Fatalf("err = %v, want ErrMalformedSource", err)
	}
	if s.State().Len() != 3 || s.State().Remaining() != 2 {
		t.Errorf("rejected load changed state: len %d remaining %d", s.State().Len(), s.State().Remaining())
	}
	if !filepath.IsAbs(s.Origin()) {
		t.Errorf("Origin() = %q, want absolute path", s.Origin())
	}
}

func TestSession_Attributes(t *testing.T) {
	dir := t.TempDir()
	attrs := writeFile(t, dir, "attrs.csv", "name,line\nitem A,Chuo\nitem A,Dup\n")

	s := newTestSession(t)
	s.LoadItems(numbered(3), "")
	if err := s.LoadAttributesFile(attrs, "name"); err != nil {
		t.Fatal(err)
	}

	if w := s.TakeWarnings(); len(w) != 1 || !strings.Contains(w[0].Message, "duplicate") {
		t.Errorf("warnings = %v", w)
	}

	v := s.View()
	if !v.HasAttributes || v.ShowDetails {
		t.Errorf("HasAttributes %v ShowDetails %v", v.HasAttributes, v.ShowDetails)
	}
	if len(v.Rows[0].Fields) != 1 || v.Rows[0].Detail != "" {
		t.Errorf("row 1 = %+v, want fields without rendered detail", v.Rows[0])
	}

	if !s.ToggleDetails() {
		t.Fatal("ToggleDetails should turn details on")
	}
	v = s.View()
	if v.Rows[0].Detail != "line: Chuo" {
		t.Errorf("Detail = %q, want %q", v.Rows[0].Detail, "line: Chuo")
	}
	if v.Rows[1].Detail != "" || v.Rows[1].Fields != nil {
		t.Errorf("row 2 has no attributes, got %+v", v.Rows[1])
	}

	if err := s.LoadAttributesFile(filepath.Join(dir, "missing.csv"), "name"); err == nil {
		t.Error("expected error for missing attribute file")
	}
	if s.Lookup() == nil {
		t.Error("failed attribute load should keep the previous lookup")
	}
}

func TestSession_PersistsAndRestores(t *testing.T) {
	store := newTestStore(t)
	items := numbered(8)

	first := newTestSession(t, WithStore(store))
	first.LoadItems(items, "/lists/eight.csv")
	_ = first.JumpTo(4)
	_, _ = first.CheckCurrent()

	second := newTestSession(t, WithStore(store))
	second.LoadItems(items, "/lists/eight.csv")

	want := []bool{true, true, true, true, false, false, false, false}
	if diff := cmp.Diff(want, second.State().Checked()); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}

	rec, err := store.LatestProgress(first.Fingerprint())
	if err != nil || rec == nil {
		t.Fatalf("LatestProgress = %v, %v", rec, err)
	}
	if rec.SessionID != first.ID() || !rec.SavedAt.Equal(fixedNow) {
		t.Errorf("record = %+v", rec)
	}
}

func TestSession_AutosaveOff(t *testing.T) {
	store := newTestStore(t)
	cfg := config.Default()
	cfg.Autosave = false

	s := newTestSession(t, WithStore(store), WithConfig(cfg))
	s.LoadItems(numbered(3), "")
	_, _ = s.CheckCurrent()

	if rec, _ := store.LatestProgress(s.Fingerprint()); rec != nil {
		t.Fatal("autosave off should not write progress")
	}

	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if rec, _ := store.LatestProgress(s.Fingerprint()); rec == nil {
		t.Error("explicit Save should write progress")
	}
}

func TestSession_SavedProgressForResizedListWarns(t *testing.T) {
	store := newTestStore(t)

	old := newTestSession(t, WithStore(store))
	old.LoadItems([]string{"a", "b"}, "/lists/l.csv")
	_, _ = old.CheckCurrent()

	s := newTestSession(t, WithStore(store))
	s.LoadItems([]string{"a", "b", "c"}, "/lists/l.csv")

	if s.State().Remaining() != 3 {
		t.Errorf("resized list should start fresh, Remaining = %d", s.State().Remaining())
	}
	w := s.TakeWarnings()
	if len(w) != 1 {
		t.Fatalf("warnings = %v, want one", w)
	}
	if !strings.Contains(w[0].Message, "covers 2 items but the list has 3") {
		t.Errorf("warning = %q", w[0].Message)
	}
	if w[0].Detail != "  (2 unchanged)\n+ c\n" {
		t.Errorf("detail = %q", w[0].Detail)
	}
}

func TestSession_SavedProgressForEditedListSameLength(t *testing.T) {
	store := newTestStore(t)

	old := newTestSession(t, WithStore(store))
	old.LoadItems([]string{"a", "b"}, "/lists/l.csv")
	_, _ = old.CheckCurrent()

	s := newTestSession(t, WithStore(store))
	s.LoadItems([]string{"a", "B"}, "/lists/l.csv")

	if diff := cmp.Diff([]bool{true, false}, s.State().Checked()); diff != "" {
		t.Errorf("same-length list should restore by position:\n%s", diff)
	}
	if w := s.TakeWarnings(); len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
}

type failingStore struct{ err error }

func (f failingStore) SaveProgress(state.ProgressRecord) (int64, error) { return 0, f.err }
func (f failingStore) LatestProgress(string) (*state.ProgressRecord, error) {
	return nil, f.err
}
func (f failingStore) LatestForSource(string) (*state.ProgressRecord, error) {
	return nil, f.err
}
func (f failingStore) PruneHistory(string, int) error { return f.err }

func TestSession_StoreFailures(t *testing.T) {
	boom := errors.New("disk on fire")
	s := newTestSession(t, WithStore(failingStore{err: boom}))

	s.LoadItems(numbered(2), "")
	if w := s.TakeWarnings(); len(w) != 1 || !strings.Contains(w[0].Message, "disk on fire") {
		t.Errorf("warnings = %v", w)
	}

	if _, err := s.CheckCurrent(); !errors.Is(err, boom) {
		t.Errorf("CheckCurrent err = %v, want store failure", err)
	}
	if s.State().Remaining() != 1 {
		t.Error("in-memory check should stand even when saving fails")
	}
}

func TestSession_StructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s := New(WithLogger(logger))
	s.LoadItems(numbered(2), "/lists/two.csv")
	_, _ = s.CheckCurrent()

	out := buf.String()
	for _, want := range []string{"items loaded", "source=/lists/two.csv", "count=2", "item checked", "index=1", "session=" + s.ID()} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestSession_ReloadKeepsUnsavedProgress(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.csv", "a\nb\nc\n")

	s := newTestSession(t)
	if err := s.LoadItemsFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CheckCurrent(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "items.csv", "a\nB\nc\n")
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if diff := cmp.Diff([]string{"a", "B", "c"}, s.State().Texts()); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, false, false}, s.State().Checked()); diff != "" {
		t.Errorf("checked mismatch (-want +got):\n%s", diff)
	}
	if w := s.TakeWarnings(); len(w) != 0 {
		t.Errorf("unexpected warnings: %v", w)
	}
}

func TestSession_ReloadResizedListWarns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.csv", "a\nb\n")

	s := newTestSession(t)
	if err := s.LoadItemsFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CheckCurrent(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "items.csv", "a\nb\nc\n")
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if s.State().Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3", s.State().Remaining())
	}
	warnings := s.TakeWarnings()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if !strings.Contains(warnings[0].Detail, "+ c") {
		t.Errorf("warning detail %q should list the added item", warnings[0].Detail)
	}
}

func TestSession_ReloadMalformedKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.csv", "a\nb\n")

	s := newTestSession(t)
	if err := s.LoadItemsFile(path); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "items.csv", "a,1\nb,2\n")
	if err := s.Reload(); !errors.Is(err, source.ErrMalformedSource) {
		t.Fatalf("Reload() error = %v, want ErrMalformedSource", err)
	}
	if s.State().Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.State().Len())
	}
}

func TestSession_InvalidDetailTemplateWarns(t *testing.T) {
	cfg := config.Default()
	cfg.DetailTemplate = "{{ .Key "

	var logs bytes.Buffer
	s := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))), WithConfig(cfg))

	warnings := s.TakeWarnings()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	if !strings.Contains(warnings[0].Message, "detail template rejected") {
		t.Errorf("warning = %q", warnings[0].Message)
	}
	if !strings.Contains(logs.String(), "level=WARN") {
		t.Errorf("rejected template should be logged at warn level:\n%s", logs.String())
	}

	// the default template still renders details
	s.LoadItems([]string{"alpha"}, "")
	lookup, err := source.ReadAttributes(strings.NewReader("name,owner\nalpha,ana\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	s.LoadAttributes(lookup)
	if !s.ToggleDetails() {
		t.Fatal("details should be shown after toggle")
	}
	if rows := s.View().Rows; len(rows) != 1 || !strings.Contains(rows[0].Detail, "owner: ana") {
		t.Errorf("rows = %+v, want a default detail line", rows)
	}
}

func TestSession_ReloadResizedListWithStoreWarnsOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "items.csv", "a\nb\n")

	cfg := config.Default()
	cfg.Autosave = false
	s := newTestSession(t, WithStore(newTestStore(t)), WithConfig(cfg))
	if err := s.LoadItemsFile(path); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CheckCurrent(); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "items.csv", "a\nb\nc\n")
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	warnings := s.TakeWarnings()
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if s.State().Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3", s.State().Remaining())
	}
}
