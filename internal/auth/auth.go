// internal/auth/auth.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"mcp-meal-plan/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Session identifies who is generating a plan. It is handed explicitly to
// the code that needs it instead of living in process-wide state.
type Session struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	users  map[string]config.User
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewService(users []config.User, secret string, ttl time.Duration) *Service {
	byName := make(map[string]config.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &Service{
		users:  byName,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Login checks the password and issues a signed token for the session.
func (s *Service) Login(username, password string) (*Session, string, error) {
	user, ok := s.users[username]
	if !ok {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if len(s.secret) == 0 {
		return nil, "", errors.New("token secret not configured")
	}

	session := &Session{
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: s.now().Add(s.ttl).Truncate(time.Second),
	}

	claims := jwt.MapClaims{
		"sub":  session.Username,
		"role": session.Role,
		"exp":  session.ExpiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}
	return session, token, nil
}

// Authenticate validates a token issued by Login and returns its session.
func (s *Service) Authenticate(tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	username, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)

	// Accounts removed from the config lose access immediately.
	if _, known := s.users[username]; !known {
		return nil, fmt.Errorf("%w: unknown user", ErrUnauthorized)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: token has no expiry", ErrUnauthorized)
	}

	return &Session{Username: username, Role: role, ExpiresAt: exp.Time}, nil
}

// HashPassword returns the bcrypt hash stored in the config file.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
