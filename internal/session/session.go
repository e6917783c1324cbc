// Package session defines the identity model shared by the credential store,
// the gateway and the route guard.
package session

import "strings"

// Role determines which routes and endpoints a user may reach. The backend
// remains the authority; client-side checks only steer navigation.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleSeller   Role = "SELLER"
	RoleCustomer Role = "CUSTOMER"
	// RoleGuest is reported when no profile is cached.
	RoleGuest    Role = "GUEST"
)

// ParseRole normalizes a role string. Unknown values are kept as-is.
func ParseRole(s string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleAdmin, RoleSeller, RoleCustomer:
		return r
	}
	return Role(strings.TrimSpace(s))
}

// Persisted credential store keys.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Well-known navigation targets.
const (
	LoginRoute    = "/login"
	RegisterRoute = "/register"
	HomeRoute     = "/"
	AdminHome     = "/admin/dashboard"
	SellerHome    = "/seller/dashboard"
)

// HomeFor returns the landing route for a role.
func HomeFor(role Role) string {
	switch role {
	case RoleAdmin:
		return AdminHome
	case RoleSeller:
		return SellerHome
	default:
		return HomeRoute
	}
}

// Profile is the cached user profile. Only its presence and Role are trusted
// client-side.
type Profile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// Session is a synchronous snapshot of the persisted credentials.
type Session struct {
	Authenticated bool
	Profile       *Profile
}

// Reader is the subset of the credential store a session is built from.
type Reader interface {
	Get(key string) (string, bool)
	GetJSON(key string, dst any) bool
}

// Load builds a Session from the store without any network call.
func Load(store Reader) Session {
	_, authenticated := store.Get(KeyAccessToken)

	var profile Profile
	if !store.GetJSON(KeyUser, &profile) {
		return Session{Authenticated: authenticated}
	}
	profile.Role = ParseRole(string(profile.Role))
	return Session{Authenticated: authenticated, Profile: &profile}
}

// Role returns the cached role or RoleGuest when no profile is present.
func (s Session) Role() Role {
	if s.Profile == nil || s.Profile.Role == "" {
		return RoleGuest
	}
	return s.Profile.Role
}
