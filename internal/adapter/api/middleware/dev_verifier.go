package middleware

import (
	"context"
	"strings"

	"motiv8/internal/domain/entity"
	"motiv8/pkg/errors"
)

// DevVerifier trusts the token itself as the identity, in the form
// "uid", "uid:name" or "uid:name:admin". Only for local runs without Firebase.
type DevVerifier struct{}

func (DevVerifier) VerifyToken(_ context.Context, token string) (*entity.Identity, error) {
	parts := strings.SplitN(token, ":", 3)
	if parts[0] == "" {
		return nil, errors.Unauthorized("Empty token", nil)
	}

	identity := &entity.Identity{UID: parts[0]}
	if len(parts) > 1 {
		identity.DisplayName = parts[1]
	}
	if len(parts) > 2 {
		identity.Admin = parts[2] == "admin"
	}
	return identity, nil
}
