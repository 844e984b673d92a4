package helpers

import (
	"tixbay/internal/models"
)

type EnhancedClaims struct {
	*CustomClaims
	Role          models.Role `json:"role"`
	UserID        string      `json:"id"`
	Email         string      `json:"email,omitempty"`
	PreferredName string      `json:"preferred_name,omitempty"`
	CreatedAt     string      `json:"created_at,omitempty"`
}

// Helper methods for role checking
func (ec *EnhancedClaims) IsAdmin() bool {
	return ec.Role == models.RoleAdmin
}

func (ec *EnhancedClaims) IsOrganizer() bool {
	return ec.Role == models.RoleOrganizer
}

func (ec *EnhancedClaims) IsCustomer() bool {
	return ec.Role == models.RoleCustomer
}

func (ec *EnhancedClaims) HasRole(role models.Role) bool {
	return ec.Role == role
}

func (ec *EnhancedClaims) IsOwner(userID string) bool {
	return ec.UserID == userID
}
