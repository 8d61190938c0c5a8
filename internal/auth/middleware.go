package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// rateLimiter tracks failed login attempts per IP.
type rateLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	maxFail  int
	now      func() time.Time
}

const (
	rateLimitWindow  = 1 * time.Minute
	rateLimitMaxFail = 10
)

func newRateLimiter() *rateLimiter {
	return &rateLimiter{
		attempts: make(map[string][]time.Time),
		window:   rateLimitWindow,
		maxFail:  rateLimitMaxFail,
		now:      time.Now,
	}
}

// prune drops attempts older than the window. Callers hold rl.mu.
func (rl *rateLimiter) prune(ip string) []time.Time {
	cutoff := rl.now().Add(-rl.window)
	valid := rl.attempts[ip][:0]
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		delete(rl.attempts, ip)
		return nil
	}
	rl.attempts[ip] = valid
	return valid
}

// limited reports whether ip has used up its failures for the window.
func (rl *rateLimiter) limited(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.prune(ip)) >= rl.maxFail
}

// recordFailure records a failed attempt and returns true if rate limited.
func (rl *rateLimiter) recordFailure(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := append(rl.prune(ip), rl.now())
	rl.attempts[ip] = valid
	return len(valid) >= rl.maxFail
}

// Admin checks the admin password and guards admin routes.
type Admin struct {
	hash    []byte
	issuer  *Issuer
	limiter *rateLimiter
}

// NewAdmin creates an Admin from cfg.
func NewAdmin(cfg Config) (*Admin, error) {
	if cfg.PasswordHash == "" {
		return nil, fmt.Errorf("admin password hash is required")
	}
	if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	issuer, err := NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &Admin{hash: []byte(cfg.PasswordHash), issuer: issuer, limiter: newRateLimiter()}, nil
}

// Login exchanges the admin password for a token. ip identifies the
// caller for rate limiting.
func (a *Admin) Login(ip, password string) (Token, error) {
	if a.limiter.limited(ip) {
		return Token{}, ErrRateLimited
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		a.limiter.recordFailure(ip)
		slog.Warn("admin login failed", "ip", ip)
		return Token{}, ErrInvalidCredentials
	}
	return a.issuer.Issue()
}

// Verify checks an admin token.
func (a *Admin) Verify(token string) (*Claims, error) {
	return a.issuer.Verify(token)
}

// RequireAdmin rejects requests without a valid Bearer admin token.
func (a *Admin) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		if _, err := a.issuer.Verify(strings.TrimPrefix(authHeader, "Bearer ")); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		slog.Error("encoding auth error", "error", err)
	}
}
