package account

import "time"

// User is a backend user record.
type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Avatar      string     `json:"avatar,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// ProfileInput updates the signed-in user's own profile.
type ProfileInput struct {
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,max=20"`
	Address  string `json:"address,omitempty" validate:"omitempty,max=500"`
	Avatar   string `json:"avatar,omitempty" validate:"omitempty,max=255"`
}

// PasswordInput changes the signed-in user's password.
type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// UserInput creates or updates a user from the admin area. Password is
// required on create only.
type UserInput struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6,max=100"`
	FullName string `json:"fullName" validate:"required"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=CUSTOMER SELLER STAFF ADMIN"`
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE BANNED"`
}

// UserFilter narrows the admin user list.
type UserFilter struct {
	Page     int
	Size     int
	SortBy   string
	SortDir  string
	Role     string
	Status   string
	Keyword  string
	DateFrom string
	DateTo   string
}
