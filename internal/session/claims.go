package session

import (
	"fmt"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/hookpost/console-agent/internal/serviceerr"
)

var signatureAlgorithms = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.EdDSA,
}

// Claims decodes the access token as a JWT and returns its claims without
// verifying the signature; the token is opaque to us and only the server can
// vouch for it. Meant for display (whoami), not for authorization decisions.
func (m *Manager) Claims() (map[string]any, error) {
	token := m.AccessToken()
	if token == "" {
		return nil, serviceerr.ErrNoSession
	}

	parsed, err := jwt.ParseSigned(token, signatureAlgorithms)
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	var claims map[string]any
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return nil, fmt.Errorf("decoding access token claims: %w", err)
	}

	return claims, nil
}
