package auth

import (
	"context"
	"strings"

	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// Resolver turns a raw Authorization header value into an Identity. A token
// is accepted only when it is still present in the session store and its
// signature and embedded expiry check out.
type Resolver struct {
	tokens   *TokenManager
	sessions SessionStore
}

// NewResolver constructs a resolver.
func NewResolver(tokens *TokenManager, sessions SessionStore) *Resolver {
	return &Resolver{tokens: tokens, sessions: sessions}
}

// Resolve validates the header value. An absent header resolves to a nil
// Identity with no error; the caller decides whether that is fatal.
func (r *Resolver) Resolve(ctx context.Context, rawHeader string) (*Identity, error) {
	raw := strings.TrimSpace(rawHeader)
	if raw == "" {
		return nil, nil
	}

	token := stripBearer(raw)
	if token == "" {
		return nil, apperrors.NewMissingCredential("malformed authorization header")
	}

	ok, err := r.sessions.Exists(ctx, token)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		return nil, apperrors.NewExpiredCredential("token expired or revoked")
	}

	claims, err := r.tokens.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewInvalidCredential("invalid token")
	}

	return &Identity{UserID: claims.UserID, Username: claims.Username, Role: claims.Role}, nil
}

// ResolveOptional is the tolerant variant used by public read endpoints:
// any resolution failure degrades to anonymous instead of an error.
func (r *Resolver) ResolveOptional(ctx context.Context, rawHeader string) *Identity {
	id, err := r.Resolve(ctx, rawHeader)
	if err != nil {
		return nil
	}
	return id
}

func stripBearer(raw string) string {
	if len(raw) >= 6 && strings.EqualFold(raw[:6], "bearer") {
		rest := raw[6:]
		if rest == "" {
			return ""
		}
		if rest[0] == ' ' {
			return strings.TrimSpace(rest)
		}
	}
	return raw
}
