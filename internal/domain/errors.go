package domain

import "errors"

// Error classes mapped to transport status codes. Wrap with fmt.Errorf("%w: ...").
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream failure")
)

// UserIdentity is what a token verifier resolves a bearer token to.
type UserIdentity struct {
	ID     string   `json:"id"`
	Email  string   `json:"email,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
}
