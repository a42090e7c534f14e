// Package session owns one loaded checklist and implements the user-facing
// actions on it. A Session is used from a single goroutine.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/AntoineGS/ticklist/internal/checklist"
	"github.com/AntoineGS/ticklist/internal/config"
	"github.com/AntoineGS/ticklist/internal/source"
	"github.com/AntoineGS/ticklist/internal/state"
	tmpl "github.com/AntoineGS/ticklist/internal/template"
	"github.com/google/uuid"
)

// Warning is a recoverable problem the UI should show to the user.
type Warning struct {
	Message string
	// Detail is optional extra text, such as a list diff
	Detail string
}

func (w Warning) String() string {
	return w.Message
}

// Session holds the state of one loaded item list together with its
// optional attribute lookup.
type Session struct {
	now          func() time.Time
	logger       *slog.Logger
	store        ProgressStore
	detail       *tmpl.Engine
	state        *checklist.State
	lookup       *source.Lookup
	id           string
	origin       string
	fingerprint  string
	jumpMode     string
	detailErr    error
	warnings     []Warning
	highlight    int
	historyLimit int
	autosave     bool
	showDetails  bool
	resized      bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithStore enables loading and saving progress.
func WithStore(store ProgressStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithConfig applies jump mode, autosave, history limit and the detail
// display settings.
func WithConfig(cfg *config.AppConfig) Option {
	return func(s *Session) {
		s.jumpMode = cfg.JumpMode
		s.autosave = cfg.Autosave
		s.historyLimit = cfg.HistoryLimit
		s.showDetails = cfg.ShowDetails
		e, err := tmpl.NewEngine(cfg.DetailTemplate)
		if err != nil {
			s.detailErr = err
			return
		}
		s.detail = e
	}
}

// WithClock overrides the time source used for saves and exports.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New creates a Session with no list loaded.
func New(opts ...Option) *Session {
	s := &Session{
		id:           uuid.NewString(),
		now:          time.Now,
		logger:       slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
		jumpMode:     config.JumpMark,
		autosave:     true,
		historyLimit: config.DefaultHistoryLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.detail == nil {
		e, err := tmpl.NewEngine(config.DefaultDetailTemplate)
		if err != nil {
			panic(fmt.Sprintf("default detail template: %v", err))
		}
		s.detail = e
	}

	s.logger = s.logger.With(slog.String("session", s.id))

	if s.detailErr != nil {
		s.warn(fmt.Sprintf("detail template rejected, using the default: %v", s.detailErr), "")
	}

	return s
}

// ID returns the session identifier recorded with saved progress.
func (s *Session) ID() string {
	return s.id
}

// Loaded reports whether an item list is loaded.
func (s *Session) Loaded() bool {
	return s.state != nil
}

// State returns the underlying checklist state, or nil before a load.
func (s *Session) State() *checklist.State {
	return s.state
}

// Origin returns the path the items were loaded from, if any.
func (s *Session) Origin() string {
	return s.origin
}

// Fingerprint returns the fingerprint of the loaded list.
func (s *Session) Fingerprint() string {
	return s.fingerprint
}

// TakeWarnings returns and clears the pending warnings.
func (s *Session) TakeWarnings() []Warning {
	w := s.warnings
	s.warnings = nil
	return w
}

func (s *Session) warn(msg, detail string) {
	s.logger.Warn(msg)
	s.warnings = append(s.warnings, Warning{Message: msg, Detail: detail})
}

// LoadItemsFile loads the item list at path. On failure the current list is
// kept.
func (s *Session) LoadItemsFile(path string) error {
	texts, err := source.LoadItemsFile(path)
	if err != nil {
		s.logger.Error("item source rejected", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("loading items: %w", err)
	}

	origin := path
	if abs, err := filepath.Abs(path); err == nil {
		origin = abs
	}

	s.LoadItems(texts, origin)

	return nil
}

// LoadItems replaces the loaded list. Saved progress for the same list is
// restored when a store is configured; progress saved from the same origin
// for a list of a different length is reported and ignored.
func (s *Session) LoadItems(texts []string, origin string) {
	s.state = checklist.NewState(texts)
	s.origin = origin
	s.fingerprint = s.state.Fingerprint()
	s.highlight = 0
	s.resized = false

	s.logger.Info("items loaded",
		slog.String("source", origin),
		slog.Int("count", s.state.Len()),
	)

	if s.store != nil {
		s.restoreSaved()
	}
}

func (s *Session) restoreSaved() {
	rec, err := s.store.LatestProgress(s.fingerprint)
	if err != nil {
		s.warn(fmt.Sprintf("could not read saved progress: %v", err), "")
		return
	}

	if rec == nil && s.origin != "" {
		rec, err = s.store.LatestForSource(s.origin)
		if err != nil {
			s.warn(fmt.Sprintf("could not read saved progress: %v", err), "")
			return
		}
	}
	if rec == nil {
		s.logger.Debug("no saved progress", slog.String("fingerprint", s.fingerprint))
		return
	}

	if err := s.state.Restore(rec.Checked); err != nil {
		var lm *checklist.LengthMismatchError
		if errors.As(err, &lm) {
			s.resized = true
			s.warn(fmt.Sprintf("saved progress covers %d items but the list has %d; starting fresh", lm.Got, lm.Want),
				ListChange(rec.Items, s.state.Texts()))
			return
		}
		s.warn(fmt.Sprintf("could not restore saved progress: %v", err), "")
		return
	}

	if rec.Fingerprint != s.fingerprint {
		s.logger.Info("list text changed since last save; progress restored by position",
			slog.String("source", s.origin))
	}
	s.logger.Debug("progress restored",
		slog.Int64("record", rec.ID),
		slog.Int("remaining", s.state.Remaining()),
	)
}

// Reload re-reads the item source the session was loaded from. Progress
// that was not persisted carries over by position when the length is
// unchanged.
func (s *Session) Reload() error {
	if s.state == nil {
		return ErrNoList
	}

	prev := s.state
	prevHighlight := s.highlight
	if err := s.LoadItemsFile(s.origin); err != nil {
		return err
	}

	if s.store != nil && s.autosave {
		return nil
	}

	if err := s.state.Restore(prev.Checked()); err != nil {
		var lm *checklist.LengthMismatchError
		if errors.As(err, &lm) {
			if !s.resized {
				s.warn(fmt.Sprintf("list changed from %d to %d items; progress cleared", lm.Got, lm.Want),
					ListChange(prev.Texts(), s.state.Texts()))
			}
			return nil
		}
		return err
	}
	if prevHighlight <= s.state.Len() {
		s.highlight = prevHighlight
	}

	return nil
}

// LoadAttributesFile loads the attribute table at path. On failure the
// current lookup is kept.
func (s *Session) LoadAttributesFile(path, keyColumn string) error {
	l, err := source.LoadAttributesFile(path, keyColumn)
	if err != nil {
		s.logger.Error("attribute source rejected", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("loading attributes: %w", err)
	}

	s.LoadAttributes(l)

	return nil
}

// LoadAttributes sets the attribute lookup. A nil lookup removes it.
func (s *Session) LoadAttributes(l *source.Lookup) {
	s.lookup = l
	if l == nil {
		return
	}

	s.logger.Info("attributes loaded",
		slog.String("key", l.KeyColumn()),
		slog.Int("keys", l.Len()),
	)
	if len(l.Duplicates) > 0 {
		s.warn(fmt.Sprintf("%d duplicate attribute keys ignored (first row kept)", len(l.Duplicates)), "")
	}
}

// Lookup returns the attribute lookup, or nil.
func (s *Session) Lookup() *source.Lookup {
	return s.lookup
}

// ImportSnapshot reads a snapshot and applies it to the loaded list. It
// reports whether the snapshot was applied; a length mismatch is a warning,
// not an error.
func (s *Session) ImportSnapshot(r io.Reader) (bool, error) {
	if s.state == nil {
		return false, ErrNoList
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return false, fmt.Errorf("reading snapshot: %w", err)
	}

	snap, err := checklist.DecodeSnapshot(data)
	if err != nil {
		return false, fmt.Errorf("importing snapshot: %w", err)
	}

	if err := s.state.Restore(snap.Checked); err != nil {
		if errors.Is(err, checklist.ErrLengthMismatch) {
			s.warn(fmt.Sprintf("snapshot ignored: %v", err), "")
			return false, nil
		}
		return false, fmt.Errorf("importing snapshot: %w", err)
	}

	if snap.Fingerprint != "" && snap.Fingerprint != s.fingerprint {
		s.logger.Info("snapshot was exported from a different list of the same length")
	}
	s.logger.Info("snapshot imported", slog.Int("remaining", s.state.Remaining()))

	return true, s.persist()
}

// ImportSnapshotFile imports the snapshot stored at path.
func (s *Session) ImportSnapshotFile(path string) (bool, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return false, fmt.Errorf("opening snapshot: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	return s.ImportSnapshot(f)
}

// CheckCurrent checks the actionable item and returns its index, or 0 when
// the list is already complete.
func (s *Session) CheckCurrent() (int, error) {
	if s.state == nil {
		return 0, ErrNoList
	}

	first, ok := s.state.Window().Actionable()
	if !ok {
		return 0, nil
	}

	if err := s.state.Check(first); err != nil {
		return 0, err
	}
	s.highlight = 0
	s.logger.Debug("item checked", slog.Int("index", first))

	return first, s.persist()
}

// JumpTo moves the work frontier to row n. In mark mode rows 1..n-1 become
// checked; in scroll mode only the highlight moves.
func (s *Session) JumpTo(n int) error {
	if s.state == nil {
		return ErrNoList
	}

	if s.jumpMode == config.JumpScroll {
		if _, err := s.state.Item(n); err != nil {
			return err
		}
		s.highlight = n
		return nil
	}

	if err := s.state.CheckPrefix(n); err != nil {
		return err
	}
	s.highlight = n
	s.logger.Debug("jumped", slog.Int("row", n), slog.Int("remaining", s.state.Remaining()))

	return s.persist()
}

// Reset clears every check.
func (s *Session) Reset() error {
	if s.state == nil {
		return ErrNoList
	}

	s.state.Reset()
	s.highlight = 0
	s.logger.Info("progress reset", slog.Int("count", s.state.Len()))

	return s.persist()
}

// ToggleDetails flips attribute detail visibility and returns the new value.
func (s *Session) ToggleDetails() bool {
	s.showDetails = !s.showDetails
	return s.showDetails
}

// Snapshot returns the export envelope of the current state.
func (s *Session) Snapshot() (checklist.Snapshot, error) {
	if s.state == nil {
		return checklist.Snapshot{}, ErrNoList
	}
	return s.state.Snapshot(s.fingerprint, s.now()), nil
}

// ExportSnapshot writes the export envelope to w.
func (s *Session) ExportSnapshot(w io.Writer) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}

	data, err := checklist.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	return nil
}

// ExportSnapshotFile writes the export envelope to path.
func (s *Session) ExportSnapshotFile(path string) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}

	data, err := checklist.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	s.logger.Info("snapshot exported", slog.String("path", path))

	return nil
}

// Save stores the current progress. It is a no-op without a store.
func (s *Session) Save() error {
	if s.state == nil {
		return ErrNoList
	}
	if s.store == nil {
		return nil
	}

	_, err := s.store.SaveProgress(state.ProgressRecord{
		Fingerprint: s.fingerprint,
		SourcePath:  s.origin,
		SessionID:   s.id,
		Items:       s.state.Texts(),
		Checked:     s.state.Checked(),
		SavedAt:     s.now(),
	})
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}

	if err := s.store.PruneHistory(s.fingerprint, s.historyLimit); err != nil {
		s.logger.Warn("pruning progress history failed", slog.Any("error", err))
	}

	return nil
}

func (s *Session) persist() error {
	if !s.autosave {
		return nil
	}
	return s.Save()
}
