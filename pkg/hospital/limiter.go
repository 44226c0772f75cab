package hospital

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// One help request per bed every 15 seconds, the patient screen's cooldown.
var (
	DefaultHelpRate  = rate.Every(15 * time.Second)
	DefaultHelpBurst = 1
)

// RateLimiterStore manages per-bed help request limiters: bed_id -> rate limiter
type RateLimiterStore struct {
	limiters     map[string]*rate.Limiter
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
}

func NewRateLimiterStore(defaultRate rate.Limit, defaultBurst int) *RateLimiterStore {
	return &RateLimiterStore{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  defaultRate,
		defaultBurst: defaultBurst,
	}
}

func (s *RateLimiterStore) GetLimiter(bedID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[bedID]
	if !exists {
		limiter = rate.NewLimiter(s.defaultRate, s.defaultBurst)
		s.limiters[bedID] = limiter
	}
	return limiter
}

func (s *RateLimiterStore) SetLimiter(bedID string, bedRate rate.Limit, bedBurst int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limiters[bedID] = rate.NewLimiter(bedRate, bedBurst)
}

// Forget drops a bed's limiter, e.g. when the bed is deleted.
func (s *RateLimiterStore) Forget(bedID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.limiters, bedID)
}

func (s *RateLimiterStore) Allow(bedID string) bool {
	return s.GetLimiter(bedID).Allow()
}
