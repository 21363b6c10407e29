package providers

import (
	"encoding/hex"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/readroomapp/readroom-server/internal/auth"
	"github.com/readroomapp/readroom-server/internal/config"
)

// AuthKey is the symmetric key used to sign access tokens.
type AuthKey []byte

// ProvideAuthKey loads or generates the token signing key and stores it
// in the configuration for downstream consumers.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load auth key: %w", err)
	}
	cfg.Auth.AccessTokenKey = key

	return AuthKey(key), nil
}

// ProvideTokenService creates the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(key),
		cfg.Auth.AccessTokenDuration,
		cfg.Auth.RefreshTokenDuration,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	return tokenService, nil
}
