package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalCan(t *testing.T) {
	assert.False(t, (&Principal{UserID: 1, Role: RoleUser}).Can(CapabilityApproveDrafts))
	assert.True(t, (&Principal{UserID: 2, Role: RoleReviewer}).Can(CapabilityApproveDrafts))
	assert.True(t, (&Principal{UserID: 3, Role: RoleUser, Capabilities: []Capability{CapabilityApproveDrafts}}).Can(CapabilityApproveDrafts))

	var nobody *Principal
	assert.False(t, nobody.Can(CapabilityApproveDrafts))
}

func TestClaimsPrincipal(t *testing.T) {
	claims := &JWTClaims{UserID: 9, Role: RoleSysop}
	p := claims.Principal()
	assert.Equal(t, int64(9), p.UserID)
	assert.True(t, p.Can(CapabilityApproveDrafts))

	var missing *JWTClaims
	assert.Nil(t, missing.Principal())
}
