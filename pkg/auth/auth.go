// Package auth provides a narrow authentication façade for the nornicdb
// command-line server.
//
// It never touches the graph engine directly: it wraps a fixed set of
// bcrypt-hashed credentials and answers one question, whether a given
// username/password pair authenticates, for the `serve` subcommand to gate
// on before it accepts any request. Everything else a full auth system
// would have (JWT issuance, RBAC, audit logging, account lockout) is out of
// scope for the embedded core.
//
// Example Usage:
//
//	authenticator := auth.NewBcryptAuthenticator()
//	if err := authenticator.AddUser("admin", "SecurePass123!"); err != nil {
//		log.Fatal(err)
//	}
//	if err := authenticator.Authenticate("admin", "SecurePass123!"); err != nil {
//		log.Fatal("denied")
//	}
package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate when the username is
// unknown or the password does not match its stored hash.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrUserExists is returned by AddUser for a username already registered.
var ErrUserExists = errors.New("auth: user already exists")

// Authenticator checks a username/password pair against a credential store.
// It is the only surface the rest of nornicdb sees.
type Authenticator interface {
	AddUser(username, password string) error
	Authenticate(username, password string) error
}

// BcryptAuthenticator is an Authenticator backed by an in-memory map of
// bcrypt password hashes. It holds no sessions, tokens, or roles; it
// answers exactly one question per call.
type BcryptAuthenticator struct {
	mu    sync.RWMutex
	cost  int
	users map[string]string // username -> bcrypt hash
}

// NewBcryptAuthenticator returns a BcryptAuthenticator with bcrypt's default
// cost factor and no registered users.
func NewBcryptAuthenticator() *BcryptAuthenticator {
	return &BcryptAuthenticator{
		cost:  bcrypt.DefaultCost,
		users: make(map[string]string),
	}
}

// AddUser registers a new username/password pair, hashing the password with
// bcrypt. It returns ErrUserExists if the username is already registered.
func (a *BcryptAuthenticator) AddUser(username, password string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.users[username]; exists {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return err
	}
	a.users[username] = string(hash)
	return nil
}

// Authenticate checks username/password against the registered hash,
// returning ErrInvalidCredentials on any mismatch or unknown user.
func (a *BcryptAuthenticator) Authenticate(username, password string) error {
	a.mu.RLock()
	hash, ok := a.users[username]
	a.mu.RUnlock()

	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

var _ Authenticator = (*BcryptAuthenticator)(nil)
