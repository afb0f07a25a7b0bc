package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventcrm/internal/models"
	"eventcrm/internal/store"
)

// ErrNotAuthenticated is returned when no valid session exists. Expired or
// corrupt session files are removed and reported the same way.
var ErrNotAuthenticated = errors.New("not authenticated, run login first")

// Sessions persist the logged-in operator between CLI invocations as a
// signed HS256 token in a file, so each short-lived process can recover
// the acting user without re-prompting for credentials.
type Sessions struct {
	file   string
	secret []byte
	ttl    time.Duration
}

func NewSessions(file, secret string, ttl time.Duration) *Sessions {
	return &Sessions{file: file, secret: []byte(secret), ttl: ttl}
}

// Login verifies the credentials and writes a fresh session token.
func (s *Sessions) Login(st *store.Store, username, password string) (*models.User, error) {
	u, err := st.GetUserByUsername(username)
	if err != nil {
		var nf *models.NotFoundError
		if errors.As(err, &nf) {
			return nil, errors.New("unknown username or wrong password")
		}
		return nil, err
	}
	if CheckPassword(u.PasswordHash, password) != nil {
		return nil, errors.New("unknown username or wrong password")
	}
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"role":     string(u.Role),
		"exp":      time.Now().Add(s.ttl).Unix(),
		"iat":      time.Now().Unix(),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.file), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.file, []byte(tok), 0o600); err != nil {
		return nil, fmt.Errorf("write session file: %w", err)
	}
	return u, nil
}

// Logout removes the session file. Logging out while logged out is not an
// error.
func (s *Sessions) Logout() error {
	err := os.Remove(s.file)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// CurrentUser verifies the stored token and re-fetches the user so the
// actor always reflects current database state, not the role captured at
// login time.
func (s *Sessions) CurrentUser(st *store.Store) (*models.User, error) {
	raw, err := os.ReadFile(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	tok, err := jwt.Parse(string(raw), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		_ = s.Logout()
		return nil, ErrNotAuthenticated
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		_ = s.Logout()
		return nil, ErrNotAuthenticated
	}
	sub, _ := claims["sub"].(string)
	u, err := st.GetUser(sub)
	if err != nil {
		_ = s.Logout()
		return nil, ErrNotAuthenticated
	}
	return u, nil
}
