package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"motiv8/internal/domain/entity"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// VerifyToken checks an ID token and extracts the caller's identity.
// The display name comes from the "name" claim and admin rights from a
// custom "admin" claim set to true.
func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*entity.Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return identityFromClaims(result.UID, result.Claims), nil
}

func identityFromClaims(uid string, claims map[string]interface{}) *entity.Identity {
	identity := &entity.Identity{UID: uid}
	if name, ok := claims["name"].(string); ok {
		identity.DisplayName = name
	}
	if admin, ok := claims["admin"].(bool); ok {
		identity.Admin = admin
	}
	return identity
}

// SetAdmin grants or revokes the admin custom claim.
func (f *FirebaseAuthClient) SetAdmin(ctx context.Context, uid string, admin bool) error {
	return f.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{"admin": admin})
}
