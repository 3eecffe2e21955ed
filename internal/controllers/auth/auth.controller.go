package authController

import (
	"context"
	"time"
	"vitals/config"
	"vitals/internal/logger"
	. "vitals/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// GoogleUser is the identity asserted by a verified provider token.
type GoogleUser struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// TokenVerifier checks a provider ID token and returns the identity it
// asserts. The production implementation calls Google's tokeninfo
// endpoint; tests inject their own.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleUser, error)
}

// AuthController exchanges verified provider tokens for internal bearer
// tokens and resolves those tokens back to an email on each request.
type AuthController struct {
	verifier TokenVerifier
	secret   []byte
	ttl      time.Duration
	log      logger.Logger
}

func New(verifier TokenVerifier, config config.Config) *AuthController {
	return &AuthController{
		verifier: verifier,
		secret:   []byte(config.SecurityJWTSecret),
		ttl:      time.Duration(config.SecurityJWTTTLHours) * time.Hour,
		log:      logger.New("AuthController"),
	}
}

// ExchangeGoogleToken verifies the provider token and mints an internal
// HS256 bearer token with the user's email as subject.
func (ac *AuthController) ExchangeGoogleToken(ctx context.Context, idToken string) (string, GoogleUser, error) {
	log := ac.log.Function("ExchangeGoogleToken")

	user, err := ac.verifier.Verify(ctx, idToken)
	if err != nil {
		log.Warn("provider token rejected", "error", err)
		return "", GoogleUser{}, ErrUnauthenticated
	}

	if user.Email == "" {
		return "", GoogleUser{}, ErrUnauthenticated
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.Email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ac.ttl)),
	})

	signed, err := token.SignedString(ac.secret)
	if err != nil {
		return "", GoogleUser{}, log.Err("failed to sign token", err, "email", user.Email)
	}

	log.Info("issued access token", "email", user.Email)
	return signed, user, nil
}

// ResolveToken validates an internal bearer token and returns the email it
// was issued to. Any parse, signature or expiry failure maps to
// ErrUnauthenticated.
func (ac *AuthController) ResolveToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrUnauthenticated
			}
			return ac.secret, nil
		},
	)
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrUnauthenticated
	}

	return claims.Subject, nil
}
