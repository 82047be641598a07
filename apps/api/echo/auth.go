package echoapi

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/LukaszKielczewski66/fightclub/core/account"
)

const (
	contextIdentityKey = "identity"

	bearerScheme = "Bearer"
)

var signingMethod = jwt.SigningMethodHS256

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// NewClaims returns the claims of a token issued to acc, valid for ttl.
func NewClaims(acc account.Account, issuer string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   acc.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  acc.Name,
		Email: acc.Email,
		Role:  string(acc.Role),
	}
}

// Identity maps the claims to the caller identity. Unknown roles are rejected.
func (c Claims) Identity() (account.Identity, error) {
	role, ok := account.ParseRole(c.Role)
	if !ok || c.Subject == "" {
		return account.Identity{}, errInvalidToken
	}
	return account.Identity{ID: c.Subject, Role: role}, nil
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(signingMethod, claims)
	ss, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func parseToken(raw string, secret []byte) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{signingMethod.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// jwtMiddleware authenticates the bearer token and stores its claims and identity in the context.
func jwtMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, found := strings.Cut(auth, " ")
			if !found || !strings.EqualFold(scheme, bearerScheme) || strings.TrimSpace(raw) == "" {
				return errMissingToken
			}

			claims, err := parseToken(strings.TrimSpace(raw), secret)
			if err != nil {
				return errInvalidToken.WithInternal(err)
			}
			id, err := claims.Identity()
			if err != nil {
				return err
			}
			ctx.Set(contextIdentityKey, id)
			return next(ctx)
		}
	}
}

func getContextIdentity(ctx echo.Context) (account.Identity, error) {
	if id, ok := ctx.Get(contextIdentityKey).(account.Identity); ok {
		return id, nil
	}
	return account.Identity{}, errUnauthorized
}
