package firebase

import (
	"context"
)

// GenerateDevToken mints a custom token for local testing. Clients exchange
// it for an ID token with the Firebase client SDK.
func (f *FirebaseAuthClient) GenerateDevToken(ctx context.Context, uid string, admin bool) (string, error) {
	claims := map[string]interface{}{}
	if admin {
		claims["admin"] = true
	}

	return f.client.CustomTokenWithClaims(ctx, uid, claims)
}
