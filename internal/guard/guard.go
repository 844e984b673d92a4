// Package guard holds the role-gated navigation decision: given the current
// session and a route's required role, decide whether to render, send the
// caller to login, or steer them to their role's home. The decision is a
// pure function so the same matrix backs both the HTTP middleware and the
// redirect hints returned to clients.
package guard

import (
	"tixbay/internal/models"
)

const (
	LoginPath     = "/login"
	CustomerHome  = "/profile"
	OrganizerHome = "/dashboard"
)

type Phase int

const (
	// PhaseUnknown is the only initial state: the session check has not
	// resolved yet, so nothing gated renders.
	PhaseUnknown Phase = iota
	PhaseAnonymous
	PhaseAuthenticated
)

type Session struct {
	Phase Phase
	Role  models.Role
}

type Action int

const (
	// ActionWait renders a neutral loading state; no decision yet.
	ActionWait Action = iota
	ActionRender
	ActionRedirect
)

type Decision struct {
	Action Action
	// Target is the redirect destination when Action is ActionRedirect.
	Target string
	// ReturnTo carries the originally requested path on login redirects so
	// the caller can be sent back after authenticating.
	ReturnTo string
}

// HomeFor maps a role to its canonical home route.
func HomeFor(role models.Role) string {
	if role == models.RoleOrganizer {
		return OrganizerHome
	}
	return CustomerHome
}

// Decide applies the gating rules in order. requiredRole may be empty for
// protected-but-role-agnostic routes. Admin bypasses role-mismatch
// redirects entirely.
func Decide(session Session, requiredRole models.Role, path string) Decision {
	if session.Phase == PhaseUnknown {
		return Decision{Action: ActionWait}
	}

	if session.Phase != PhaseAuthenticated {
		return Decision{Action: ActionRedirect, Target: LoginPath, ReturnTo: path}
	}

	role := session.Role

	if requiredRole != "" && role != models.RoleAdmin {
		if requiredRole == models.RoleCustomer && role == models.RoleOrganizer {
			return Decision{Action: ActionRedirect, Target: OrganizerHome}
		}
		if requiredRole == models.RoleOrganizer && role == models.RoleCustomer {
			return Decision{Action: ActionRedirect, Target: CustomerHome}
		}
		if role != requiredRole {
			return Decision{Action: ActionRedirect, Target: HomeFor(role)}
		}
	}

	if requiredRole == "" {
		// Default steering between the two role homes.
		if role == models.RoleOrganizer && path == CustomerHome {
			return Decision{Action: ActionRedirect, Target: OrganizerHome}
		}
		if role == models.RoleCustomer && path == OrganizerHome {
			return Decision{Action: ActionRedirect, Target: CustomerHome}
		}
	}

	return Decision{Action: ActionRender}
}
