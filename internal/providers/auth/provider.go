package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GriffinCanCode/filedeck/internal/shared/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// DefaultUsername and DefaultPassword are used when no credentials are configured.
const (
	DefaultUsername = "admin"
	DefaultPassword = "admin"

	// DefaultMaxAttempts is the number of failed logins tolerated before lockout.
	DefaultMaxAttempts = 10
)

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("wrong credential")
	ErrLocked             = errors.New("the account has been locked, please change the password and try again")
)

// Session is an issued login token.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
}

// Provider verifies the single configured account and tracks session tokens.
type Provider struct {
	username    string
	hash        []byte
	maxAttempts int64
	attempts    atomic.Int64
	sessions    sync.Map
	logger      *zap.Logger
}

// New creates a provider. A blank username or hash falls back to admin/admin.
func New(username, passwordHash string, maxAttempts int, logger *zap.Logger) (*Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if username == "" {
		username = DefaultUsername
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	hash := []byte(passwordHash)
	if passwordHash == "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash default password: %w", err)
		}
		logger.Warn("no password hash configured, using the default credentials")
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}

	return &Provider{
		username:    username,
		hash:        hash,
		maxAttempts: int64(maxAttempts),
		logger:      logger,
	}, nil
}

// Login checks the credentials and returns a new session token.
func (p *Provider) Login(login, password string) (string, error) {
	if err := utils.ValidateCredentials(login, password); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingCredentials, err)
	}

	if n := p.attempts.Load(); n > p.maxAttempts {
		p.logger.Warn("account locked for excess of attempts", zap.Int64("attempt", n))
		return "", ErrLocked
	}

	userOK := subtle.ConstantTimeCompare([]byte(login), []byte(p.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(p.hash, []byte(password))
	if !userOK || passErr != nil {
		p.attempts.Add(1)
		p.logger.Warn("failed login attempt")
		return "", ErrInvalidCredentials
	}

	p.attempts.Store(0)
	token := generateToken()
	p.sessions.Store(token, &Session{
		Token:     token,
		Username:  p.username,
		CreatedAt: time.Now(),
	})
	p.logger.Info("successful login")
	return token, nil
}

// Logout discards token. Unknown tokens are ignored.
func (p *Provider) Logout(token string) {
	if token == "" {
		return
	}
	p.sessions.Delete(token)
}

// Valid reports whether token belongs to a live session.
func (p *Provider) Valid(token string) bool {
	if err := utils.ValidateString(token, "token", 1, 128, true); err != nil {
		return false
	}
	_, ok := p.sessions.Load(token)
	return ok
}

// Attempts returns the current count of consecutive failed logins.
func (p *Provider) Attempts() int64 {
	return p.attempts.Load()
}

// Sessions returns the number of live sessions.
func (p *Provider) Sessions() int {
	n := 0
	p.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func generateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing leaves no safe fallback
		panic(fmt.Sprintf("crypto/rand failed: %v - cannot generate secure token", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
