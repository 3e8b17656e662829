package reconcile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// sessionFileName is the fixed key the session record is persisted under
const sessionFileName = "cardlink_session.json"

// ErrNoSession is returned when no session record is persisted (logged out)
var ErrNoSession = errors.New("no session")

// Session is the single opaque record persisted at sign-in and cleared at
// logout. Address is the owner id every reconciliation pass starts from.
type Session struct {
	Address string `json:"address"`
	Token   string `json:"token,omitempty"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
}

// SessionStore is the narrow persistence interface threaded through the
// reconciler so it can be faked in tests
type SessionStore interface {
	Get() (*Session, error)
	Set(session *Session) error
	Clear() error
}

// FileSessionStore persists the session as a JSON file under a fixed name in
// the given directory
type FileSessionStore struct {
	dir string
}

func NewFileSessionStore(dir string) *FileSessionStore {
	return &FileSessionStore{dir: dir}
}

func (f *FileSessionStore) path() string {
	return filepath.Join(f.dir, sessionFileName)
}

func (f *FileSessionStore) Get() (*Session, error) {
	content, err := os.ReadFile(f.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var session Session
	if uErr := json.Unmarshal(content, &session); uErr != nil {
		return nil, uErr
	}
	if session.Address == "" {
		return nil, ErrNoSession
	}
	return &session, nil
}

func (f *FileSessionStore) Set(session *Session) error {
	content, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(), content, 0600)
}

func (f *FileSessionStore) Clear() error {
	err := os.Remove(f.path())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemorySessionStore holds the session in memory (tests and previews)
type MemorySessionStore struct {
	mu      sync.Mutex
	session *Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (m *MemorySessionStore) Get() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	copied := *m.session
	return &copied, nil
}

func (m *MemorySessionStore) Set(session *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.session = &copied
	return nil
}

func (m *MemorySessionStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
