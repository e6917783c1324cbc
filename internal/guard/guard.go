// Package guard decides whether the current session may enter a route.
package guard

import (
	"slices"
	"strings"

	"github.com/abduss/storefront/internal/session"
)

// Decision is the outcome of a guard check. Redirect is set only when Allow is
// false.
type Decision struct {
	Allow    bool
	Redirect string
}

var allow = Decision{Allow: true}

func redirect(path string) Decision {
	return Decision{Redirect: path}
}

// Evaluate applies the route guard rules. An empty required set admits any
// authenticated user. A role mismatch sends the user to their own home route.
func Evaluate(s session.Session, required ...session.Role) Decision {
	if !s.Authenticated {
		return redirect(session.LoginRoute)
	}
	if len(required) == 0 {
		return allow
	}
	if s.Profile == nil {
		return redirect(session.LoginRoute)
	}
	if slices.Contains(required, s.Profile.Role) {
		return allow
	}
	return redirect(session.HomeFor(s.Profile.Role))
}

// Route is one entry of the navigation table.
type Route struct {
	Path   string
	Public bool
	// Roles limits the route to these roles. Empty means any signed-in user.
	Roles []session.Role
}

var (
	adminOnly  = []session.Role{session.RoleAdmin}
	sellerOnly = []session.Role{session.RoleSeller}
	anyRole    = []session.Role{session.RoleAdmin, session.RoleSeller, session.RoleCustomer}
)

// Routes is the storefront navigation table.
var Routes = []Route{
	{Path: session.HomeRoute, Public: true},
	{Path: session.LoginRoute, Public: true},
	{Path: session.RegisterRoute, Public: true},

	{Path: "/profile", Roles: anyRole},
	{Path: "/cart"},
	{Path: "/orders"},

	{Path: session.AdminHome, Roles: adminOnly},
	{Path: "/admin/users", Roles: adminOnly},
	{Path: "/admin/products", Roles: adminOnly},
	{Path: "/admin/reviews", Roles: adminOnly},
	{Path: "/admin/categories", Roles: adminOnly},

	{Path: session.SellerHome, Roles: sellerOnly},
	{Path: "/seller/orders", Roles: sellerOnly},
}

// Lookup finds the route for path, ignoring a trailing slash and any query.
func Lookup(path string) (Route, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		path = session.HomeRoute
	}
	for _, r := range Routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}

// Check evaluates s against the route.
func (r Route) Check(s session.Session) Decision {
	if r.Public {
		return allow
	}
	return Evaluate(s, r.Roles...)
}

// Navigate looks up path and evaluates s against it. Unknown paths report
// false.
func Navigate(path string, s session.Session) (Decision, bool) {
	r, ok := Lookup(path)
	if !ok {
		return Decision{}, false
	}
	return r.Check(s), true
}
