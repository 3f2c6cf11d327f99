// Package auth resolves inbound bearer credentials to an actor. The engine
// treats the result as opaque and only ever reads the identity and role.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/approvalhq/workflow-service/internal/domain/entity"
	"github.com/approvalhq/workflow-service/internal/domain/workflow"
)

// Claims extends the registered JWT claims with the caller's role
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator validates HS256 bearer tokens and mints development tokens
type Authenticator struct {
	secret []byte
	issuer string
	logger *zap.Logger
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(secret, issuer string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(secret),
		issuer: issuer,
		logger: logger,
	}
}

// Resolve parses and validates a token string and returns the actor it
// identifies. Every failure mode maps to workflow.ErrAuthentication; the
// caller cannot distinguish a forged token from an expired one.
func (a *Authenticator) Resolve(tokenString string) (entity.Actor, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		a.logger.Debug("Token validation failed", zap.Error(err))
		return entity.Actor{}, fmt.Errorf("invalid token: %w", workflow.ErrAuthentication)
	}

	if claims.Subject == "" {
		return entity.Actor{}, fmt.Errorf("token has no subject: %w", workflow.ErrAuthentication)
	}

	role, ok := entity.ParseRole(claims.Role)
	if !ok {
		return entity.Actor{}, fmt.Errorf("token has unknown role %q: %w", claims.Role, workflow.ErrAuthentication)
	}

	return entity.Actor{Identity: claims.Subject, Role: role}, nil
}

// Sign mints a token for the given identity and role. Used by the gentoken
// utility and by tests; the service itself never issues credentials.
func (a *Authenticator) Sign(identity string, role entity.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
