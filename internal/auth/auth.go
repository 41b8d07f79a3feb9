package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const DefaultTokenTTL = 24 * time.Hour

var (
	ErrEmptyCredentials   = errors.New("login and password must not be empty")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrInvalidToken       = errors.New("invalid token")
)

// UserStore persists logins with hashed passwords.
type UserStore interface {
	RegisterUser(ctx context.Context, login, passwordHash string) error
	PasswordHash(ctx context.Context, login string) (string, error)
}

// Authenticator registers users and issues HS256 tokens whose subject is
// the login.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	users  UserStore
	// Cost is the bcrypt cost used by Register.
	Cost int
}

func New(secret string, ttl time.Duration, users UserStore) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, users: users, Cost: bcrypt.DefaultCost}
}

func (a *Authenticator) Register(ctx context.Context, login, password string) error {
	if strings.TrimSpace(login) == "" || password == "" {
		return ErrEmptyCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.Cost)
	if err != nil {
		return err
	}
	return a.users.RegisterUser(ctx, login, string(hash))
}

// Login checks the password and returns a fresh token.
func (a *Authenticator) Login(ctx context.Context, login, password string) (string, error) {
	hash, err := a.users.PasswordHash(ctx, login)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}
	return a.Issue(login)
}

func (a *Authenticator) Issue(login string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   login,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify returns the login a valid token was issued for.
func (a *Authenticator) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

type loginKey struct{}

// LoginFrom returns the login stored by Middleware.
func LoginFrom(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(loginKey{}).(string)
	return login, ok
}

// Middleware resolves a "Bearer" token into a login on the request context.
// When required is set, requests without a valid token get 401.
func (a *Authenticator) Middleware(required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if ok {
				if login, err := a.Verify(token); err == nil {
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loginKey{}, login)))
					return
				}
			}
			if required {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
