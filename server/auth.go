package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"foodarena/config"
)

const (
	adminSubject     = "admin"
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

var (
	errInvalidCredentials = errors.New("invalid password")
	errRateLimited        = errors.New("too many login attempts, try again later")
	errInvalidToken       = errors.New("invalid token")
)

// Auth guards the admin API with a bcrypt password and HS256 tokens
type Auth struct {
	passHash  []byte
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time

	// Rate limiting for login attempts (IP -> attempts)
	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth returns nil when no admin password hash is configured
func NewAuth(cfg config.AdminConfig) (*Auth, error) {
	if cfg.PasswordHash == "" {
		return nil, nil
	}
	if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		// Tokens then only survive until restart
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
	}
	return &Auth{
		passHash:  []byte(cfg.PasswordHash),
		jwtSecret: secret,
		ttl:       cfg.TokenTTL,
		now:       time.Now,
		rateMap:   make(map[string]*rateEntry),
	}, nil
}

// Login checks the admin password and returns a signed token
func (a *Auth) Login(password, ip string) (string, error) {
	if !a.checkRate(ip) {
		return "", errRateLimited
	}
	if err := bcrypt.CompareHashAndPassword(a.passHash, []byte(password)); err != nil {
		return "", errInvalidCredentials
	}
	return a.generateToken()
}

// ValidateToken accepts only unexpired admin tokens signed with our secret
func (a *Auth) ValidateToken(tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.jwtSecret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return errInvalidToken
	}
	if sub, _ := claims.GetSubject(); sub != adminSubject {
		return errInvalidToken
	}
	return nil
}

// RequireAdmin rejects requests without a valid Bearer token
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || a.ValidateToken(tok) != nil {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": errInvalidToken.Error()})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) generateToken() (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub": adminSubject,
		"exp": now.Add(a.ttl).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.jwtSecret)
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := a.now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}
