package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserRole names a wiki user group.
type UserRole string

const (
	RoleUser     UserRole = "user"
	RoleReviewer UserRole = "reviewer"
	RoleSysop    UserRole = "sysop"
)

// Capability is a named permission.
type Capability string

// CapabilityApproveDrafts lets a principal refuse or approve other users' drafts.
const CapabilityApproveDrafts Capability = "drafts-approve"

var roleCapabilities = map[UserRole][]Capability{
	RoleReviewer: {CapabilityApproveDrafts},
	RoleSysop:    {CapabilityApproveDrafts},
}

// Principal is the acting user of a request.
type Principal struct {
	UserID       int64
	Role         UserRole
	Capabilities []Capability
}

// Can reports whether the principal holds the capability, directly or through its role.
func (p *Principal) Can(want Capability) bool {
	if p == nil {
		return false
	}
	for _, c := range p.Capabilities {
		if c == want {
			return true
		}
	}
	for _, c := range roleCapabilities[p.Role] {
		if c == want {
			return true
		}
	}
	return false
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID       int64        `json:"user_id"`
	Role         UserRole     `json:"role"`
	Capabilities []Capability `json:"capabilities,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the acting principal.
func (c *JWTClaims) Principal() *Principal {
	if c == nil {
		return nil
	}
	return &Principal{UserID: c.UserID, Role: c.Role, Capabilities: c.Capabilities}
}
