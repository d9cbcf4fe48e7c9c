package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/boletin/core"
)

const (
	contextTokenKey  = "callerToken"
	contextCallerKey = "caller"
	tokenAudience    = "Boletin"
)

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the school's identity service; this API only verifies them.
type Claims struct {
	jwt.StandardClaims
	Username string   `json:"username,omitempty"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

func (c Claims) caller() core.Caller {
	return core.Caller{
		UserID:   c.Subject,
		Username: c.Username,
		Email:    c.Email,
		Roles:    c.Roles,
	}
}

// GetCallerClaims builds the claims of a token acting on behalf of caller.
func GetCallerClaims(conf *core.Config, caller core.Caller) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   caller.UserID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: caller.Username,
		Email:    caller.Email,
		Roles:    caller.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextCaller returns the request's caller, built once from the token claims.
func getContextCaller(ctx echo.Context) (core.Caller, error) {
	if caller, ok := ctx.Get(contextCallerKey).(core.Caller); ok {
		return caller, nil
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Caller{}, err
	}
	if claims.Subject == "" {
		return core.Caller{}, errUnauthorized
	}
	caller := claims.caller()
	ctx.Set(contextCallerKey, caller)
	return caller, nil
}
