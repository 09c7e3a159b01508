// Package ratelimit provides per-client request rate limiting backed by
// golang.org/x/time/rate token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string     // Endpoint path pattern (supports prefix matching)
	Method string     // HTTP method (GET, POST, etc.)
	Rate   rate.Limit // Sustained requests per second, 0 means unlimited
	Burst  int        // Burst capacity (defaults to 1 if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultRate     rate.Limit
	DefaultBurst    int
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds a configuration from a per-client rate in requests per
// second. A non-positive rps disables limiting.
func NewConfig(rps float64, burst int) *Config {
	if burst <= 0 {
		burst = 1
	}
	return &Config{
		Enabled:         rps > 0,
		DefaultRate:     rate.Limit(rps),
		DefaultBurst:    burst,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(rps),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
// Rewrites call the language model once or twice per bullet, so they get a
// tenth of the default rate.
func DefaultEndpointConfigs(rps float64) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/rewrite", Method: "POST", Rate: rate.Limit(rps / 10), Burst: 2},
		{Path: "/metrics", Method: "GET", Rate: 0},
	}
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter manages one token bucket per client and endpoint.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	config  *Config
	now     func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = NewConfig(0, 0)
	}

	limiter := &Limiter{
		entries: make(map[string]*entry),
		config:  config,
		now:     time.Now,
	}

	// Start cleanup goroutine if enabled
	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
// Returns true if allowed, false if rate limited, along with rate limit information.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	unlimited := Info{Allowed: true}
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, unlimited
	}

	endpointConfig := l.config.Endpoint(method, endpoint)
	if endpointConfig == nil {
		endpointConfig = &EndpointConfig{
			Rate:  l.config.DefaultRate,
			Burst: l.config.DefaultBurst,
		}
	}
	if endpointConfig.Rate <= 0 {
		return true, unlimited
	}
	burst := endpointConfig.Burst
	if burst <= 0 {
		burst = 1
	}

	now := l.now()
	key := clientID + ":" + endpoint + ":" + method
	lim := l.limiterFor(key, endpointConfig.Rate, burst, now)

	info := Info{Limit: burst}
	reservation := lim.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		info.RetryAfter = delay
		info.Remaining = 0
		return false, info
	}

	info.Allowed = true
	info.Remaining = max(0, int(lim.TokensAt(now)))
	return true, info
}

func (l *Limiter) limiterFor(key string, r rate.Limit, burst int, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(r, burst)}
		l.entries[key] = e
	}
	e.lastAccess = now
	return e.limiter
}

// cleanup removes old unused buckets to prevent memory leaks.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets(l.now())
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets idle for longer than IdleTimeout.
func (l *Limiter) cleanupBuckets(now time.Time) {
	idle := l.config.IdleTimeout
	if idle <= 0 {
		idle = time.Hour
	}
	cutoff := now.Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastAccess.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
