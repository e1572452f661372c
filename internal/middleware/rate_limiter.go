package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/slamora/lupanes/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ipEntry tracks request counts per IP within a sliding window.
type ipEntry struct {
	count     int
	windowEnd time.Time
	mu        sync.Mutex
}

var (
	loginMap   = make(map[string]*ipEntry)
	loginMapMu sync.Mutex

	apiMap   = make(map[string]*ipEntry)
	apiMapMu sync.Mutex
)

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return limitBy(&loginMapMu, loginMap, 20, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.")
}

// RateLimiter is the general sliding-window limiter applied to the whole API.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return limitBy(&apiMapMu, apiMap, limit, window,
		"Demasiadas solicitudes. Intente nuevamente en un momento.")
}

func limitBy(mu *sync.Mutex, m map[string]*ipEntry, limit int, window time.Duration, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		entry, exists := m[ip]
		if !exists {
			entry = &ipEntry{}
			m[ip] = entry
		}
		mu.Unlock()

		entry.mu.Lock()
		defer entry.mu.Unlock()

		now := time.Now()
		if now.After(entry.windowEnd) {
			entry.count = 0
			entry.windowEnd = now.Add(window)
		}

		entry.count++
		if entry.count > limit {
			c.Header("Retry-After", entry.windowEnd.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(msg))
			return
		}
		c.Next()
	}
}

// Expired IPs are purged periodically so the maps do not grow without bound.

const purgeInterval = 5 * time.Minute

func init() {
	go purgeExpiredEntries()
}

func purgeExpiredEntries() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		purged := purgeMap(&loginMapMu, loginMap, now) + purgeMap(&apiMapMu, apiMap, now)
		if purged > 0 {
			log.Debug().Int("entries_purged", purged).Msg("rate limiter maps purged")
		}
	}
}

func purgeMap(mu *sync.Mutex, m map[string]*ipEntry, now time.Time) int {
	mu.Lock()
	defer mu.Unlock()
	purged := 0
	for ip, entry := range m {
		entry.mu.Lock()
		if now.After(entry.windowEnd) {
			delete(m, ip)
			purged++
		}
		entry.mu.Unlock()
	}
	return purged
}
