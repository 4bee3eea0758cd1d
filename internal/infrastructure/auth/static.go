// Package auth resolves bearer tokens to callers.
package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

// StaticVerifier accepts a fixed set of API tokens.
type StaticVerifier struct {
	tokens [][]byte
}

var _ ports.TokenVerifier = (*StaticVerifier)(nil)

// NewStaticVerifier trims and keeps the non-empty tokens.
func NewStaticVerifier(tokens []string) *StaticVerifier {
	v := &StaticVerifier{}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			v.tokens = append(v.tokens, []byte(t))
		}
	}
	return v
}

// Enabled reports whether any token is configured.
func (v *StaticVerifier) Enabled() bool {
	return v != nil && len(v.tokens) > 0
}

// Verify compares token to every configured token in constant time.
// The identity id is a short digest of the token.
func (v *StaticVerifier) Verify(_ context.Context, token string) (domain.UserIdentity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.UserIdentity{}, fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}
	for _, known := range v.tokens {
		if subtle.ConstantTimeCompare(known, []byte(token)) == 1 {
			sum := sha256.Sum256(known)
			return domain.UserIdentity{
				ID:     "token-" + hex.EncodeToString(sum[:4]),
				Scopes: []string{"validation"},
			}, nil
		}
	}
	return domain.UserIdentity{}, fmt.Errorf("%w: unknown token", domain.ErrUnauthorized)
}
