// Package capability decides which mutating affordances the UI exposes for
// the current identity. This is a convenience filter only: the server
// authorizes every operation independently, so a bypassed gate changes what is
// shown, never what is permitted.
package capability

import "github.com/a-manpathan/kata-frontend/internal/domain"

// IsPrivileged reports whether the identity may see the create, edit, delete,
// and restock affordances.
func IsPrivileged(user domain.User) bool {
	return user.Role == domain.RoleAdmin
}

// Affordances enumerates what the UI should render for an identity.
type Affordances struct {
	CanPurchase bool `json:"can_purchase"`
	CanCreate   bool `json:"can_create"`
	CanEdit     bool `json:"can_edit"`
	CanDelete   bool `json:"can_delete"`
	CanRestock  bool `json:"can_restock"`
}

// For derives the affordance set. Any authenticated identity may purchase;
// the rest require the admin role.
func For(user domain.User, authenticated bool) Affordances {
	if !authenticated {
		return Affordances{}
	}
	privileged := IsPrivileged(user)
	return Affordances{
		CanPurchase: true,
		CanCreate:   privileged,
		CanEdit:     privileged,
		CanDelete:   privileged,
		CanRestock:  privileged,
	}
}
