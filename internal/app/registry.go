package app

import (
	"fmt"
	"sync"

	"viralspiral/internal/domain"
)

// Session bundles one hosted game with its service and scheduler.
type Session struct {
	Game  *domain.Game
	Svc   *Service
	Sched *Scheduler
}

// Registry tracks the games hosted by this process, capped at a configured
// maximum. Ended games must be evicted to release their slot.
type Registry struct {
	mu       sync.Mutex
	maxGames int
	sessions map[string]*Session
}

// NewRegistry builds a registry holding at most maxGames concurrent games.
// A non-positive cap means unbounded.
func NewRegistry(maxGames int) *Registry {
	return &Registry{
		maxGames: maxGames,
		sessions: make(map[string]*Session),
	}
}

// Register adds a session under its game id.
func (r *Registry) Register(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxGames > 0 && len(r.sessions) >= r.maxGames {
		return fmt.Errorf("%w: game limit of %d reached", domain.ErrNotAllowed, r.maxGames)
	}
	if _, ok := r.sessions[s.Game.ID]; ok {
		return fmt.Errorf("%w: game %s already registered", domain.ErrDuplicateAction, s.Game.ID)
	}
	r.sessions[s.Game.ID] = s
	return nil
}

// Lookup returns the session for a game id.
func (r *Registry) Lookup(gameID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: game %s", domain.ErrNotFound, gameID)
	}
	return s, nil
}

// LookupByName finds a session by game name.
func (r *Registry) LookupByName(name string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.Game.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: game named %q", domain.ErrNotFound, name)
}

// Evict releases a game's slot. Evicting an unknown id is a no-op.
func (r *Registry) Evict(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, gameID)
}

// Len reports the number of hosted games.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
