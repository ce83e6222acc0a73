package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// SoftLimiter throttles read-mostly traffic per client with a token bucket
// and no hard block: a denied request can simply retry after a moment.
type SoftLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	burst   int
	done    chan struct{}
}

func NewSoft(rps float64, burst int) *SoftLimiter {
	s := &SoftLimiter{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
		done:    make(chan struct{}),
	}
	// cleanup stale entries every minute
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-t.C:
				s.mu.Lock()
				for k, c := range s.clients {
					if time.Since(c.seen) > 3*time.Minute {
						delete(s.clients, k)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
	return s
}

func (s *SoftLimiter) Allow(identity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[identity]
	if !ok {
		c = &client{lim: rate.NewLimiter(s.r, s.burst)}
		s.clients[identity] = c
	}
	c.seen = time.Now()
	return c.lim.Allow()
}

func (s *SoftLimiter) Stop() { close(s.done) }
