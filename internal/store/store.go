// Package store persists per-session UI flags, such as whether the intro
// splash has been shown in the current terminal session.
package store

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Flags.
const (
	FlagIntroShown = "intro_shown"
)

// SessionStore defines the interface for session flag persistence.
type SessionStore interface {
	IsSet(ctx context.Context, session, flag string) (bool, error)
	Set(ctx context.Context, session, flag string) error
	// Purge removes flags set before olderThan and returns how many were removed.
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}

// sessionNamespace scopes derived session IDs.
var sessionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("kabuchart/session"))

// CurrentSessionID identifies the terminal session. A non-empty override is
// used verbatim; otherwise the ID is derived from the parent process and the
// controlling terminal, so it is stable across runs from the same shell.
func CurrentSessionID(override string) string {
	if s := strings.TrimSpace(override); s != "" {
		return s
	}
	return SessionIDFor(os.Getppid(), terminalName())
}

// SessionIDFor derives a session ID from a shell process ID and terminal name.
func SessionIDFor(ppid int, tty string) string {
	return uuid.NewSHA1(sessionNamespace, []byte(fmt.Sprintf("%d:%s", ppid, tty))).String()
}

func terminalName() string {
	if name, err := os.Readlink("/proc/self/fd/0"); err == nil {
		return name
	}
	return os.Getenv("TERM_SESSION_ID")
}

// Open returns a SQLite store at path, or a memory store when path is empty.
func Open(path string) (SessionStore, error) {
	if path == "" {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(path)
}

type flagKey struct {
	session string
	flag    string
}

// MemoryStore keeps flags for the lifetime of the process.
type MemoryStore struct {
	mu    sync.RWMutex
	flags map[flagKey]time.Time
	now   func() time.Time
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		flags: make(map[flagKey]time.Time),
		now:   time.Now,
	}
}

// IsSet reports whether flag is set for session.
func (m *MemoryStore) IsSet(_ context.Context, session, flag string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.flags[flagKey{session, flag}]
	return ok, nil
}

// Set marks flag for session.
func (m *MemoryStore) Set(_ context.Context, session, flag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[flagKey{session, flag}] = m.now()
	return nil
}

// Purge removes flags set before olderThan.
func (m *MemoryStore) Purge(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, at := range m.flags {
		if at.Before(olderThan) {
			delete(m.flags, k)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
