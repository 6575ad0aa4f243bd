package types

import "github.com/trackline-dev/trackline/internal/models"

// UserResponse is the public shape of a user account.
type UserResponse struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
	Bio   string          `json:"bio,omitempty"`
}

// UserSummary is the lightweight shape embedded in other resources
// (project members, issue assignees, notification actors).
type UserSummary struct {
	ID   uint            `json:"id"`
	Name string          `json:"name"`
	Role models.UserRole `json:"role"`
}

func NewUserSummary(user models.User) UserSummary {
	return UserSummary{
		ID:   user.ID,
		Name: user.Name,
		Role: user.Role,
	}
}
