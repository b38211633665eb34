package middleware

import (
	"errors"
	"fmt"
	"log"
	"time"

	"estatehub/internal/common"
	"estatehub/internal/config"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// tokenContextKey is where the verified identity token is stored on the echo context.
const tokenContextKey = "identity_token"

// IdentityClaims are the claims read from bearer tokens issued by the identity provider.
// Only the subject is used. Roles are always loaded from the role store.
type IdentityClaims struct {
	jwt.RegisteredClaims
}

// Authenticator verifies bearer tokens with a shared secret or a JWKS endpoint.
type Authenticator struct {
	keyFunc jwt.Keyfunc
	methods []string
	issuer  string
	jwks    *keyfunc.JWKS
}

// NewAuthenticator prefers the JWKS URL when both a URL and a secret are configured.
func NewAuthenticator(cfg config.AuthConfig) (*Authenticator, error) {
	a := &Authenticator{issuer: cfg.Issuer}

	switch {
	case cfg.JWKSURL != "":
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				log.Printf("AUTH: failed to refresh JWKS: %v", err)
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load JWKS from %s: %w", cfg.JWKSURL, err)
		}
		a.jwks = jwks
		a.keyFunc = jwks.Keyfunc
		a.methods = []string{"RS256", "ES256", "EdDSA"}
	case cfg.JWTSecret != "":
		secret := []byte(cfg.JWTSecret)
		a.keyFunc = func(*jwt.Token) (any, error) { return secret, nil }
		a.methods = []string{jwt.SigningMethodHS256.Alg()}
	default:
		return nil, errors.New("either a JWT secret or a JWKS URL is required")
	}
	return a, nil
}

// Close stops the background JWKS refresh.
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

func (a *Authenticator) parse(tokenString string) (*jwt.Token, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(a.methods),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	return jwt.ParseWithClaims(tokenString, &IdentityClaims{}, a.keyFunc, opts...)
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: tokenContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (any, error) {
			return a.parse(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			if errors.As(err, &extractErr) {
				return common.NewAppError(common.CodeUnauthenticated, "missing bearer token")
			}
			return common.WrapError(common.CodeUnauthenticated, "invalid bearer token", err)
		},
	})
}
