package utility

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// RateLimiterStore keeps one token bucket per client identifier. The number
// of tracked clients is bounded; the least recently seen client is evicted
// first. It satisfies echo's middleware.RateLimiterStore.
type RateLimiterStore struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiterStore allows `requests` per `window` per client, with the
// full allowance available as a burst.
func NewRateLimiterStore(requests int, window time.Duration, capacity int) (*RateLimiterStore, error) {
	cache, err := lru.New[string, *rate.Limiter](capacity)
	if err != nil {
		return nil, err
	}
	return &RateLimiterStore{
		limiters: cache,
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
	}, nil
}

// Allow reports whether the client may make a request now.
func (s *RateLimiterStore) Allow(identifier string) (bool, error) {
	s.mu.Lock()
	limiter, ok := s.limiters.Get(identifier)
	if !ok {
		limiter = rate.NewLimiter(s.limit, s.burst)
		s.limiters.Add(identifier, limiter)
	}
	s.mu.Unlock()

	return limiter.Allow(), nil
}

// Len is the number of clients currently tracked.
func (s *RateLimiterStore) Len() int {
	return s.limiters.Len()
}
