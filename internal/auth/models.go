package auth

import "github.com/abduss/storefront/internal/session"

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput carries self-registration data. Role defaults to CUSTOMER;
// ADMIN accounts cannot be self-registered.
type RegisterInput struct {
	Email    string       `json:"email" validate:"required,email"`
	Password string       `json:"password" validate:"required,min=6"`
	FullName string       `json:"fullName" validate:"required"`
	Phone    string       `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address  string       `json:"address,omitempty"`
	Role     session.Role `json:"role" validate:"omitempty,oneof=CUSTOMER SELLER"`
}

// AuthResult is what login and registration persist.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	User         session.Profile
}

// authPayload is the data section of the login and register responses.
type authPayload struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	UserID       int64  `json:"userId"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
}

func (p authPayload) profile() session.Profile {
	return session.Profile{
		ID:       p.UserID,
		Email:    p.Email,
		FullName: p.FullName,
		Role:     session.ParseRole(p.Role),
	}
}

// Account is the response of GET /auth/me.
type Account struct {
	ID       int64        `json:"id"`
	Email    string       `json:"email"`
	FullName string       `json:"fullName"`
	Phone    string       `json:"phone,omitempty"`
	Address  string       `json:"address,omitempty"`
	Avatar   string       `json:"avatar,omitempty"`
	Role     session.Role `json:"role"`
	Status   string       `json:"status,omitempty"`
}
