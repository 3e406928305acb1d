package authenticating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vfg2006/meta-ads-dashboard-api/internal/config"
)

func authConfig(t *testing.T) *config.Config {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3nh4-forte"), bcrypt.MinCost)
	require.NoError(t, err)

	return &config.Config{
		Auth: config.Auth{
			Secret:            "segredo-de-teste",
			AdminUser:         "admin",
			AdminPasswordHash: string(hash),
			TokenTTLHours:     1,
		},
	}
}

func TestLoginAndValidate(t *testing.T) {
	svc := NewService(authConfig(t))
	require.True(t, svc.Enabled())

	token, err := svc.Login("admin", "s3nh4-forte")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(authConfig(t))

	_, err := svc.Login("admin", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Usuário desconhecido produz exatamente o mesmo erro.
	_, err = svc.Login("root", "s3nh4-forte")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginMissingCredentials(t *testing.T) {
	svc := NewService(authConfig(t))
	_, err := svc.Login("", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestLoginDisabled(t *testing.T) {
	svc := NewService(&config.Config{})
	require.False(t, svc.Enabled())

	_, err := svc.Login("admin", "qualquer")
	assert.ErrorIs(t, err, ErrAuthDisabled)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewService(authConfig(t))

	_, err := svc.ValidateToken("nem-um-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	cfg := authConfig(t)
	issuer := NewService(cfg)

	token, err := issuer.Login("admin", "s3nh4-forte")
	require.NoError(t, err)

	other := authConfig(t)
	other.Auth.Secret = "outro-segredo"

	_, err = NewService(other).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
