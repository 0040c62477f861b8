// Package ratelimit throttles API clients with per-endpoint token
// buckets. Generation endpoints carry the tightest limits: every run
// fans out into paid LLM calls, so one client must not be able to
// queue unbounded work.
package ratelimit

import (
	"sync"
	"time"
)

// staleAfter is how long an idle client bucket survives before the
// sweeper drops it.
const staleAfter = time.Hour

// bucket holds capacity tokens and refills continuously at
// refillPerSec. One bucket exists per client+method+endpoint.
type bucket struct {
	mu           sync.Mutex
	capacity     float64
	refillPerSec float64
	tokens       float64
	lastRefill   time.Time
}

func newBucket(capacity int, refillPerSec float64) *bucket {
	return &bucket{
		capacity:     float64(capacity),
		refillPerSec: refillPerSec,
		tokens:       float64(capacity),
		lastRefill:   time.Now(),
	}
}

// take refills the bucket for the elapsed time, consumes one token when
// available, and reports the post-take state. reset is when the bucket
// will be full again.
func (b *bucket) take() (allowed bool, remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens = min(b.capacity, b.tokens+now.Sub(b.lastRefill).Seconds()*b.refillPerSec)
	b.lastRefill = now

	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		allowed = true
	}

	remaining = int(b.tokens)
	reset = now
	if b.tokens < b.capacity {
		untilFull := (b.capacity - b.tokens) / b.refillPerSec
		reset = now.Add(time.Duration(untilFull * float64(time.Second)))
	}
	return allowed, remaining, reset
}

// Info reports the rate limit state for one decision. The server turns
// it into X-RateLimit-* headers and 429 bodies.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

type entry struct {
	bucket   *bucket
	lastSeen time.Time
}

// Limiter tracks one token bucket per client+method+endpoint and
// sweeps idle ones periodically.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	config  *Config
	ticker  *time.Ticker
	done    chan struct{}
}

// NewLimiter creates a rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	l := &Limiter{
		entries: make(map[string]*entry),
		config:  config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.ticker = time.NewTicker(config.CleanupInterval)
		l.done = make(chan struct{})
		go l.sweepLoop()
	}

	return l
}

// Allow decides whether a request from clientID may hit the endpoint,
// consuming a token when it may.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	endpointConfig := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}

	// Limit 0 marks an unlimited endpoint
	if endpointConfig.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + method + " " + endpoint
	allowed, remaining, reset := l.touch(key, endpointConfig).take()

	var retryAfter time.Duration
	if !allowed {
		if retryAfter = time.Until(reset); retryAfter < 0 {
			retryAfter = 0
		}
	}

	return allowed, Info{
		Allowed:    allowed,
		Limit:      endpointConfig.Limit,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retryAfter,
	}
}

// touch returns the bucket for key, creating it from the endpoint
// config on first sight, and marks it recently used.
func (l *Limiter) touch(key string, cfg *EndpointConfig) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		capacity := cfg.Burst
		if capacity <= 0 {
			capacity = cfg.Limit
		}
		e = &entry{bucket: newBucket(capacity, float64(cfg.Limit)/cfg.Window.Seconds())}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.bucket
}

func (l *Limiter) sweepLoop() {
	for {
		select {
		case <-l.ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

// sweep drops buckets that have been idle past staleAfter.
func (l *Limiter) sweep() {
	cutoff := time.Now().Add(-staleAfter)

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Stop halts the sweeper goroutine.
func (l *Limiter) Stop() {
	if l.ticker != nil {
		l.ticker.Stop()
	}
	if l.done != nil {
		close(l.done)
	}
}
