package workspace

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/logger"
)

// State is the persisted form of a Workspace.
type State struct {
	Buffers []Buffer `toml:"buffers"`
	Current int      `toml:"current"`
	NextID  int      `toml:"next_id"`
}

// Snapshot captures the workspace for persistence.
func (w *Workspace) Snapshot() State {
	return State{
		Buffers: w.Buffers(),
		Current: w.current,
		NextID:  w.nextID,
	}
}

// FromState rebuilds a workspace, repairing what a hand-edited or truncated
// state file can break: no buffers, an out-of-range current index, a next id
// that would repeat an existing name, or cursors outside their content.
func FromState(st State) *Workspace {
	if len(st.Buffers) == 0 {
		w := &Workspace{nextID: st.NextID}
		if w.nextID < 1 {
			w.nextID = 1
		}
		w.Create()
		return w
	}

	w := &Workspace{nextID: st.NextID}
	for i := range st.Buffers {
		b := st.Buffers[i]
		b.Cursor = clamp(b.Cursor, len(b.Content))
		w.buffers = append(w.buffers, &b)
	}
	w.current = clamp(st.Current, len(w.buffers)-1)
	if w.nextID <= len(w.buffers) {
		w.nextID = len(w.buffers) + 1
	}
	return w
}

// Store saves and restores workspace snapshots as TOML, keeping three
// rotating backups of the previous file.
type Store struct {
	path   string
	logger *zap.SugaredLogger
}

// NewStore returns a store for path. An empty path selects the default
// location under the user's config directory.
func NewStore(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultStatePath()
		if err != nil {
			return nil, err
		}
	}
	return &Store{path: path, logger: logger.ComponentLogger("workspace")}, nil
}

// DefaultStatePath is <user config dir>/sapfpad/state.toml.
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine user config directory")
	}
	return filepath.Join(dir, "sapfpad", "state.toml"), nil
}

// Path is where the snapshot lives.
func (s *Store) Path() string {
	return s.path
}

// Load restores the saved workspace. A missing state file yields a fresh
// workspace.
func (s *Store) Load() (*Workspace, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Debugw("no saved workspace", logger.FieldFile, s.path)
		return New(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read workspace state %s", s.path)
	}

	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, errors.WithHintf(
			errors.Wrapf(err, "failed to parse workspace state %s", s.path),
			"a previous version is kept in %s.back1", s.path)
	}

	w := FromState(st)
	s.logger.Debugw("workspace restored",
		logger.FieldFile, s.path,
		logger.FieldCount, w.Len())
	return w, nil
}

// Save writes the workspace, rotating the previous file into the backups.
func (s *Store) Save(w *Workspace) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return errors.Wrap(err, "failed to create workspace state directory")
	}

	data, err := toml.Marshal(w.Snapshot())
	if err != nil {
		return errors.Wrap(err, "failed to marshal workspace state")
	}

	if err := s.rotateBackups(); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write workspace state %s", s.path)
	}
	return nil
}

// rotateBackups shifts .back2 to .back3 and .back1 to .back2, then copies the
// current file to .back1. The oldest backup is dropped.
func (s *Store) rotateBackups() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	back1 := s.path + ".back1"
	back2 := s.path + ".back2"
	back3 := s.path + ".back3"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		s.logger.Warnw("failed to delete old backup", logger.FieldFile, back3, logger.FieldError, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(s.path)
	if err != nil {
		return errors.Wrap(err, "failed to read state for backup")
	}
	if err := os.WriteFile(back1, content, 0644); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}
