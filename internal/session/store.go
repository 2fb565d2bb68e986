package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Store persists sessions as JSON files under <dir>/<id>.json.
// Saves rewrite the whole record via a temp file and rename, so readers
// never observe a torn record. There is no cross-process locking:
// concurrent writers to the same id race and the last write wins.
type Store struct {
	dir string
}

// NewStore creates a session store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Create persists a new session with a fresh id and no messages.
func (s *Store) Create(subject, goal, language string) (*Session, error) {
	if language == "" {
		language = "en"
	}
	sess := &Session{
		ID:       strings.ReplaceAll(uuid.NewString(), "-", ""),
		Subject:  subject,
		Goal:     goal,
		Language: language,
		Messages: []ChatMessage{},
	}
	if err := s.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load reads the session record for id.
func (s *Store) Load(id string) (*Session, error) {
	raw, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ErrNotFound{ID: id}
		}
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if sess.Language == "" {
		sess.Language = "en"
	}
	if sess.Messages == nil {
		sess.Messages = []ChatMessage{}
	}
	return &sess, nil
}

// Save rewrites the whole session record.
func (s *Store) Save(sess *Session) error {
	payload, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}

	tmp, err := os.CreateTemp(s.dir, sess.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(sess.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// Append loads the session, appends the message, and saves it back.
func (s *Store) Append(id string, msg ChatMessage) (*Session, error) {
	sess, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	sess.Messages = append(sess.Messages, msg)
	if err := s.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// List enumerates all session records. Unreadable files are skipped.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	var items []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var sess Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			continue
		}
		if sess.ID == "" {
			sess.ID = strings.TrimSuffix(entry.Name(), ".json")
		}
		items = append(items, Summary{ID: sess.ID, Subject: sess.Subject, Goal: sess.Goal})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Delete removes the session record. Idempotent; reports whether a
// record existed.
func (s *Store) Delete(id string) (bool, error) {
	err := os.Remove(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete session %s: %w", id, err)
	}
	return true, nil
}

// FindBySubjectGoal returns the id of the first session matching both
// fields exactly. An empty goal and a missing goal are the same key.
// Returns "" when nothing matches.
func (s *Store) FindBySubjectGoal(subject, goal string) (string, error) {
	items, err := s.List()
	if err != nil {
		return "", err
	}
	for _, it := range items {
		if it.Subject == subject && it.Goal == goal {
			return it.ID, nil
		}
	}
	return "", nil
}
