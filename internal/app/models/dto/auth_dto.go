package dto

import (
	"time"

	"github.com/yigit/admission/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// RegisterRequest represents a student registration request.
// Dob uses the YYYY-MM-DD layout.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Mobile   string `json:"mobile" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Gender   string `json:"gender" binding:"required,oneof=male female other"`
	Dob      string `json:"dob" binding:"required,datetime=2006-01-02"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	Name    string `json:"name" binding:"required"`
	Mobile  string `json:"mobile" binding:"required"`
	Address string `json:"address" binding:"required"`
	Gender  string `json:"gender" binding:"required,oneof=male female other"`
	Dob     string `json:"dob" binding:"required,datetime=2006-01-02"`
}

// UserResponse represents the public view of a user
type UserResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Mobile    string     `json:"mobile,omitempty"`
	Address   string     `json:"address,omitempty"`
	Gender    string     `json:"gender,omitempty"`
	Dob       *time.Time `json:"dob,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// NewUserResponse projects a user onto its public fields
func NewUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
	if u.Profile != nil {
		dob := u.Profile.DOB
		resp.Mobile = u.Profile.Mobile
		resp.Address = u.Profile.Address
		resp.Gender = u.Profile.Gender
		resp.Dob = &dob
	}
	return resp
}
