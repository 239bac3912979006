package firebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims("u1", map[string]interface{}{"name": "Ana", "admin": true})
	assert.Equal(t, "u1", id.UID)
	assert.Equal(t, "Ana", id.DisplayName)
	assert.True(t, id.Admin)

	id = identityFromClaims("u2", map[string]interface{}{"admin": "yes"})
	assert.Empty(t, id.DisplayName)
	assert.False(t, id.Admin, "only a boolean true grants admin")

	assert.False(t, identityFromClaims("u3", nil).Admin)
}
