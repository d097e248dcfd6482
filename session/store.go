package session

import (
	"sync"
)

// Credentials is the temporary credential bundle kept per session. The JSON
// keys follow the provider's own credential naming.
type Credentials struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken"`
	Expiration      string `json:"Expiration"`
	Region          string `json:"Region"`
}

// Store keeps credentials by session id. Entries are never evicted; the
// expiration they carry is informational.
type Store interface {
	Put(id string, creds Credentials)
	Get(id string) (Credentials, bool)
}

// MemoryStore is a process-local Store. Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Credentials
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Credentials)}
}

func (s *MemoryStore) Put(id string, creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = creds
}

func (s *MemoryStore) Get(id string) (Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.sessions[id]
	return creds, ok
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
