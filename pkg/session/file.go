package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const stateFileExt = ".json"

// FileStore implements Store with one JSON document per session under a
// directory. Writes go to a temporary file in the same directory and are
// renamed over the target, so readers never observe a partial document.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("state directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the state directory.
func (f *FileStore) Dir() string {
	return f.dir
}

// path maps a session id to its file. Ids are escaped so that separators
// and other unsafe characters never leave the state directory.
func (f *FileStore) path(sessionID string) string {
	return filepath.Join(f.dir, url.PathEscape(sessionID)+stateFileExt)
}

// Load reads the session's document, or returns nil if it does not exist.
func (f *FileStore) Load(ctx context.Context, sessionID string) (*State, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(sessionID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	state, err := decodeState(data)
	if err != nil {
		return nil, err
	}
	if state.SessionID == "" {
		state.SessionID = sessionID
	}
	return state, nil
}

// Save atomically replaces the session's document.
func (f *FileStore) Save(ctx context.Context, state *State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpName, f.path(state.SessionID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Delete removes the session's document.
func (f *FileStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	err := os.Remove(f.path(sessionID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	return nil
}

// List returns the ids of all stored sessions in sorted order.
func (f *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read state directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name, ok := sessionFromFile(entry)
		if ok {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Cleanup removes documents whose modification time is before olderThan.
func (f *FileStore) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read state directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if _, ok := sessionFromFile(entry); !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(olderThan) {
			if err := os.Remove(filepath.Join(f.dir, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}

// sessionFromFile maps a state document back to its session id. Temp files
// from an interrupted Save carry a different extension and are skipped.
func sessionFromFile(entry fs.DirEntry) (string, bool) {
	name := entry.Name()
	if entry.IsDir() || !strings.HasSuffix(name, stateFileExt) {
		return "", false
	}
	id, err := url.PathUnescape(strings.TrimSuffix(name, stateFileExt))
	if err != nil {
		return "", false
	}
	return id, true
}
