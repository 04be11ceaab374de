package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddUserAndAuthenticate(t *testing.T) {
	a := NewBcryptAuthenticator()
	require.NoError(t, a.AddUser("admin", "SecurePass123!"))
	require.NoError(t, a.Authenticate("admin", "SecurePass123!"))
}

func TestAuthenticateWrongPassword(t *testing.T) {
	a := NewBcryptAuthenticator()
	require.NoError(t, a.AddUser("admin", "SecurePass123!"))

	err := a.Authenticate("admin", "WrongPass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	a := NewBcryptAuthenticator()
	err := a.Authenticate("ghost", "anything")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAddUserDuplicate(t *testing.T) {
	a := NewBcryptAuthenticator()
	require.NoError(t, a.AddUser("admin", "SecurePass123!"))

	err := a.AddUser("admin", "AnotherPass456!")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestPasswordsAreHashedNotStoredPlain(t *testing.T) {
	a := NewBcryptAuthenticator()
	require.NoError(t, a.AddUser("admin", "SecurePass123!"))

	require.NotEqual(t, "SecurePass123!", a.users["admin"])
}
