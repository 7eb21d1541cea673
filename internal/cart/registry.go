package cart

import (
	"sync"

	"github.com/thesahilsinghh/shoppers/internal/auth"
)

// Sessions hands out one Session per authenticated user. Sessions are
// created on first use and dropped on logout; there is no ambient global
// cart state.
type Sessions struct {
	client BackendClient

	mu    sync.Mutex
	byKey map[string]*Session
}

func NewSessions(client BackendClient) *Sessions {
	return &Sessions{
		client: client,
		byKey:  make(map[string]*Session),
	}
}

func (r *Sessions) Get(cred auth.Credential) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cred.SessionKey()
	if s, ok := r.byKey[key]; ok {
		return s
	}
	s := NewSession(r.client, cred)
	r.byKey[key] = s
	return s
}

// Drop tears the session down. Any in-flight response for it is discarded.
func (r *Sessions) Drop(cred auth.Credential) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := cred.SessionKey()
	if s, ok := r.byKey[key]; ok {
		s.Reset()
		delete(r.byKey, key)
	}
}
