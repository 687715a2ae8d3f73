package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arman-dev/playoff-system/models"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterCreatesUnconfirmedPlayer(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	user, token, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Password:  "supersecret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, models.RolePlayer, user.Role)
	assert.False(t, user.EmailConfirmed)
	require.NotNil(t, user.EmailConfirmationToken)
	assert.Equal(t, token, *user.EmailConfirmationToken)

	// The password never survives in the clear.
	assert.NotEqual(t, "supersecret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("supersecret")))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())

	_, _, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Alice",
		Email:     "alice@example.com",
		Password:  "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	input := RegisterInput{FirstName: "Alice", Email: "alice@example.com", Password: "supersecret"}
	_, _, err := service.Register(context.Background(), input)
	require.NoError(t, err)

	_, _, err = service.Register(context.Background(), input)
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	_, _, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Alice",
		Email:     "alice@example.com",
		Password:  "supersecret",
	})
	require.NoError(t, err)

	user, err := service.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	_, err = service.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = service.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestConfirmEmail(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	user, token, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Alice",
		Email:     "alice@example.com",
		Password:  "supersecret",
	})
	require.NoError(t, err)

	require.NoError(t, service.ConfirmEmail(context.Background(), token))
	stored := repo.users[user.ID]
	assert.True(t, stored.EmailConfirmed)
	assert.Nil(t, stored.EmailConfirmationToken)

	// Confirming again with a spent token fails; the account stays confirmed.
	assert.ErrorIs(t, service.ConfirmEmail(context.Background(), token), ErrAuthTokenInvalid)
	assert.True(t, repo.users[user.ID].EmailConfirmed)
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewAuthService(repo)

	user, _, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Alice",
		Email:     "alice@example.com",
		Password:  "supersecret",
	})
	require.NoError(t, err)

	// Unknown emails produce an empty token, not an error.
	token, err := service.GeneratePasswordResetToken(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = service.GeneratePasswordResetToken(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, service.ResetPasswordByToken(context.Background(), token, "newsecret123"))
	_, err = service.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "newsecret123"})
	assert.NoError(t, err)

	// Tokens are single use.
	assert.ErrorIs(t, service.ResetPasswordByToken(context.Background(), token, "anothersecret"), ErrAuthTokenInvalid)

	// Expired tokens are rejected.
	token, err = service.GeneratePasswordResetToken(context.Background(), "alice@example.com")
	require.NoError(t, err)
	expired := time.Now().Add(-time.Minute)
	repo.users[user.ID].PasswordResetExpiresAt = &expired
	assert.ErrorIs(t, service.ResetPasswordByToken(context.Background(), token, "lastsecret99"), ErrAuthTokenInvalid)
}
