package service

import (
	"context"
	"testing"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
	"github.com/RubachokBoss/thesisflow/internal/repository/memory"
	"github.com/RubachokBoss/thesisflow/internal/service/integration"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService() AuthService {
	return NewAuthService(
		memory.NewStore(),
		integration.NewIdentityProvider("test-secret", "thesisflow", time.Hour),
		bcrypt.MinCost,
		zerolog.Nop(),
	)
}

func TestAuth_RegisterLoginAuthenticate(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()

	reg, err := auth.Register(ctx, &models.RegisterRequest{
		Email:       "ada@example.com",
		Password:    "secret-pw",
		DisplayName: "Ada",
		Role:        models.RoleStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Subject)

	login, err := auth.Login(ctx, &models.LoginRequest{Email: "ADA@example.com", Password: "secret-pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, reg.ID, login.User.ID)

	p, err := auth.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, p.UserID)
	assert.True(t, p.IsStudent())
}

func TestAuth_RegisterRules(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()

	valid := models.RegisterRequest{Email: "a@example.com", Password: "secret-pw", DisplayName: "A", Role: models.RoleSupervisor}
	_, err := auth.Register(ctx, &valid)
	require.NoError(t, err)

	dup := valid
	_, err = auth.Register(ctx, &dup)
	assert.ErrorIs(t, err, ErrConflict)

	admin := valid
	admin.Email = "b@example.com"
	admin.Role = models.RoleAdmin
	_, err = auth.Register(ctx, &admin)
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := valid
	missing.Email = "c@example.com"
	missing.DisplayName = ""
	_, err = auth.Register(ctx, &missing)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuth_LoginFailures(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService()

	_, err := auth.CreateAdmin(ctx, "root@example.com", "admin-pw", "Root")
	require.NoError(t, err)

	_, err = auth.Login(ctx, &models.LoginRequest{Email: "root@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = auth.Login(ctx, &models.LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	login, err := auth.Login(ctx, &models.LoginRequest{Email: "root@example.com", Password: "admin-pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, login.User.Role)
}

func TestAuth_UnknownSubjectRejected(t *testing.T) {
	ctx := context.Background()
	identity := integration.NewIdentityProvider("test-secret", "thesisflow", time.Hour)
	auth := NewAuthService(memory.NewStore(), identity, bcrypt.MinCost, zerolog.Nop())

	token, _, err := identity.Issue(&models.User{Subject: "ghost", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
