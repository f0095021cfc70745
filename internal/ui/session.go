package ui

import (
	"sync"
	"time"
)

// EndReason says why a window session ended.
type EndReason string

const (
	EndClosed EndReason = "closed"
	EndIdle   EndReason = "idle"
)

// session tracks whether the window is still open. It is armed by the first
// page load or heartbeat; before that no idle timeout applies. Each loaded
// page has its own ID so closing one of several tabs keeps the session alive.
type session struct {
	idle  time.Duration
	grace time.Duration
	now   func() time.Time

	mu       sync.Mutex
	armed    bool
	lastSeen time.Time
	pages    map[string]time.Time
	closeAt  time.Time
	reason   EndReason
	done     chan struct{}
	ended    bool
}

func newSession(idle, grace time.Duration) *session {
	return &session{
		idle:  idle,
		grace: grace,
		now:   time.Now,
		pages: make(map[string]time.Time),
		done:  make(chan struct{}),
	}
}

// touch records activity from page and cancels a pending close; a reload
// sends the close beacon and then loads the page again under a new ID.
func (s *session) touch(page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.armed = true
	s.lastSeen = now
	if page != "" {
		s.pages[page] = now
	}
	s.closeAt = time.Time{}
}

// requestClose forgets page. Once no open page is left the session ends
// after the grace period unless touched again.
func (s *session) requestClose(page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.armed = true
	delete(s.pages, page)
	now := s.now()
	for id, seen := range s.pages {
		// A page that went silent for a whole idle period is gone.
		if s.idle > 0 && now.Sub(seen) > s.idle {
			delete(s.pages, id)
		}
	}
	if len(s.pages) > 0 {
		return
	}
	if s.grace <= 0 {
		s.endLocked(EndClosed)
		return
	}
	s.closeAt = now.Add(s.grace)
}

// openPages reports how many pages are still considered open.
func (s *session) openPages() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// check ends the session if a pending close is due or the window went quiet.
func (s *session) check() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended || !s.armed {
		return
	}
	now := s.now()
	if !s.closeAt.IsZero() && !now.Before(s.closeAt) {
		s.endLocked(EndClosed)
		return
	}
	if s.idle > 0 && now.Sub(s.lastSeen) > s.idle {
		s.endLocked(EndIdle)
	}
}

func (s *session) endLocked(reason EndReason) {
	if s.ended {
		return
	}
	s.ended = true
	s.reason = reason
	close(s.done)
}

func (s *session) Done() <-chan struct{} { return s.done }

func (s *session) Reason() EndReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// watch polls check until the session ends or stop is closed.
func (s *session) watch(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.check()
		}
	}
}
