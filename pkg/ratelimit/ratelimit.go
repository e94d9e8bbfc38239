// Package ratelimit bounds request bursts per (actor, origin, endpoint) key.
// Counters are process-local and expire by sliding window; a restart resets
// them, which is an accepted tradeoff for abuse mitigation.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a keyed request may proceed
type Limiter interface {
	Allow(key string) bool
}

// KeyedLimiter holds one token bucket per key
type KeyedLimiter struct {
	buckets map[string]*rate.Limiter
	mu      sync.Mutex
	r       rate.Limit // requests per second
	b       int        // burst
}

// New creates a limiter allowing requests requests per window with the given
// burst
func New(requests int, window time.Duration, burst int) *KeyedLimiter {
	if burst < 1 {
		burst = 1
	}

	rps := float64(requests) / window.Seconds()

	kl := &KeyedLimiter{
		buckets: make(map[string]*rate.Limiter),
		r:       rate.Limit(rps),
		b:       burst,
	}

	// Drop idle buckets so the map does not grow without bound
	go kl.cleanup()

	return kl
}

// Allow reports whether the request identified by key may proceed, consuming
// a token when it may
func (kl *KeyedLimiter) Allow(key string) bool {
	return kl.limiterFor(key).Allow()
}

func (kl *KeyedLimiter) limiterFor(key string) *rate.Limiter {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	limiter, exists := kl.buckets[key]
	if !exists {
		limiter = rate.NewLimiter(kl.r, kl.b)
		kl.buckets[key] = limiter
	}

	return limiter
}

// cleanup removes buckets that have refilled completely, every 3 minutes
func (kl *KeyedLimiter) cleanup() {
	for {
		time.Sleep(3 * time.Minute)

		kl.mu.Lock()
		for key, limiter := range kl.buckets {
			if limiter.Tokens() >= float64(kl.b) {
				delete(kl.buckets, key)
			}
		}
		kl.mu.Unlock()
	}
}
