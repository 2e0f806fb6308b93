// Package auth holds credential primitives shared by the transports: password
// hashing, bearer tokens, Authorization header parsing and the request
// identity stored in a context.
package auth

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/dmitrijs2005/issuetracker/internal/common"
)

type Scheme int

const (
	SchemeNone Scheme = iota
	SchemeBasic
	SchemeBearer
)

// Credentials is a parsed Authorization header value.
type Credentials struct {
	Scheme   Scheme
	Login    string
	Password string
	Token    string
}

// ParseAuthorization parses "Basic <base64(login:password)>" and
// "Bearer <token>" values. An empty value yields SchemeNone with no error.
func ParseAuthorization(value string) (Credentials, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Credentials{Scheme: SchemeNone}, nil
	}

	scheme, rest, ok := strings.Cut(value, " ")
	if !ok {
		return Credentials{}, common.ErrorUnauthorized
	}
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(scheme) {
	case "basic":
		raw, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return Credentials{}, common.ErrorUnauthorized
		}
		login, password, ok := strings.Cut(string(raw), ":")
		if !ok || login == "" {
			return Credentials{}, common.ErrorUnauthorized
		}
		return Credentials{Scheme: SchemeBasic, Login: login, Password: password}, nil
	case "bearer":
		if rest == "" {
			return Credentials{}, common.ErrInvalidToken
		}
		return Credentials{Scheme: SchemeBearer, Token: rest}, nil
	default:
		return Credentials{}, common.ErrorUnauthorized
	}
}

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Login  string
	Name   string
}

type identityKey struct{}

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
