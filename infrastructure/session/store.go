package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
)

// Store keeps in-flight wizard sessions in memory. Abandoned sessions are
// swept by the janitor so late responses find nothing to write into.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domainComposer.Session

	janitorCtx    context.Context
	janitorCancel context.CancelFunc
	janitorWg     sync.WaitGroup
	janitorMu     sync.Mutex
	ttl           time.Duration
	sweepInterval time.Duration
}

// NewStore creates an empty session store
func NewStore(ttl, sweepInterval time.Duration) *Store {
	return &Store{
		sessions:      make(map[uuid.UUID]*domainComposer.Session),
		ttl:           ttl,
		sweepInterval: sweepInterval,
	}
}

func (s *Store) Put(session *domainComposer.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

func (s *Store) Get(id uuid.UUID) (*domainComposer.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Sweep removes sessions idle longer than idleFor and returns the count
func (s *Store) Sweep(idleFor time.Duration) int {
	cutoff := time.Now().Add(-idleFor)

	s.mu.Lock()
	candidates := make([]*domainComposer.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		candidates = append(candidates, session)
	}
	s.mu.Unlock()

	removed := 0
	for _, session := range candidates {
		if session.IdleSince().After(cutoff) {
			continue
		}
		s.Delete(session.ID)
		removed++
	}
	return removed
}

// StartJanitor launches the eviction loop
func (s *Store) StartJanitor(ctx context.Context) {
	s.janitorMu.Lock()
	if s.janitorCtx != nil {
		s.janitorMu.Unlock()
		logrus.Info("Composer: Session janitor already running")
		return
	}
	s.janitorCtx, s.janitorCancel = context.WithCancel(ctx)
	s.janitorMu.Unlock()

	s.janitorWg.Add(1)
	go s.runJanitor()

	logrus.Info("Composer: Session janitor started")
}

// StopJanitor cancels the loop and waits for it to exit
func (s *Store) StopJanitor() {
	s.janitorMu.Lock()
	if s.janitorCancel != nil {
		s.janitorCancel()
	}
	s.janitorMu.Unlock()

	s.janitorWg.Wait()
	logrus.Info("Composer: Session janitor stopped")
}

func (s *Store) runJanitor() {
	defer s.janitorWg.Done()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.janitorCtx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(s.ttl); removed > 0 {
				logrus.WithField("removed", removed).Info("Composer: Swept abandoned sessions")
			}
		}
	}
}
