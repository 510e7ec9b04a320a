package oidc

import (
	"context"
	"fmt"

	"github.com/khushik17/notesweb/internal/models"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenVerifier validates a bearer token and returns its claims.
// Implemented by Verifier; middleware tests substitute fakes.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error)
}

// Verifier verifies ID tokens against the identity provider's JWKS.
type Verifier struct {
	jwksManager *JWKSManager
	issuer      string
	jwksURL     string
}

// NewVerifier creates a new token verifier
func NewVerifier(jwksManager *JWKSManager, issuer, jwksURL string) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		issuer:      issuer,
		jwksURL:     jwksURL,
	}
}

// Verify verifies a token's signature, expiry and issuer, and extracts claims.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(tokenString), jwt.WithKeySet(keys), jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	iss, ok := token.Get("iss")
	if !ok {
		return nil, fmt.Errorf("token missing issuer claim")
	}
	if issStr, ok := iss.(string); !ok || issStr != v.issuer {
		return nil, fmt.Errorf("token issuer mismatch: expected %s, got %v", v.issuer, iss)
	}

	claims := &models.JWTClaims{}

	if sub, ok := token.Get("sub"); ok {
		if subStr, ok := sub.(string); ok {
			claims.Sub = subStr
		}
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("token missing subject claim")
	}

	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}

	if name, ok := token.Get("name"); ok {
		if nameStr, ok := name.(string); ok {
			claims.Name = nameStr
		}
	}

	if exp, ok := token.Get("exp"); ok {
		if expFloat, ok := exp.(float64); ok {
			claims.Exp = int64(expFloat)
		}
	}

	if iat, ok := token.Get("iat"); ok {
		if iatFloat, ok := iat.(float64); ok {
			claims.Iat = int64(iatFloat)
		}
	}

	if issStr, ok := iss.(string); ok {
		claims.Iss = issStr
	}

	if aud, ok := token.Get("aud"); ok {
		if audStr, ok := aud.(string); ok {
			claims.Aud = audStr
		} else if audArr, ok := aud.([]any); ok && len(audArr) > 0 {
			if audStr, ok := audArr[0].(string); ok {
				claims.Aud = audStr
			}
		}
	}

	return claims, nil
}
