package notification

import "sync"

// Conn is a live client connection the router can push messages to.
type Conn interface {
	Send(msg Message) error
	Close() error
}

// Registry tracks live connections per user. A user may hold several
// connections at once (multiple tabs, multiple devices); each delivery
// fans out to all of them.
type Registry struct {
	mu    sync.RWMutex
	conns map[string][]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string][]Conn)}
}

func (r *Registry) Add(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = append(r.conns[userID], c)
}

func (r *Registry) Remove(userID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.conns[userID]
	for i, have := range list {
		if have == c {
			r.conns[userID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(r.conns[userID]) == 0 {
		delete(r.conns, userID)
	}
}

// Get returns a snapshot of the user's connections. The copy keeps
// callers safe from concurrent Add/Remove while they iterate.
func (r *Registry) Get(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.conns[userID]
	if len(list) == 0 {
		return nil
	}
	out := make([]Conn, len(list))
	copy(out, list)
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, list := range r.conns {
		n += len(list)
	}
	return n
}
