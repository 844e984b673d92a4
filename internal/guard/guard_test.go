package guard

import (
	"testing"

	"tixbay/internal/models"
)

func authed(role models.Role) Session {
	return Session{Phase: PhaseAuthenticated, Role: role}
}

func TestDecideWaitsWhileUnknown(t *testing.T) {
	d := Decide(Session{Phase: PhaseUnknown}, models.RoleOrganizer, "/dashboard")
	if d.Action != ActionWait {
		t.Fatalf("unknown session decided %v, want ActionWait", d.Action)
	}
}

func TestDecideAnonymousRedirectsToLoginWithReturnPath(t *testing.T) {
	d := Decide(Session{Phase: PhaseAnonymous}, models.RoleCustomer, "/my-tickets")
	if d.Action != ActionRedirect || d.Target != LoginPath {
		t.Fatalf("got %+v, want redirect to %s", d, LoginPath)
	}
	if d.ReturnTo != "/my-tickets" {
		t.Errorf("ReturnTo = %q, want original path remembered", d.ReturnTo)
	}
}

func TestDecideRoleMismatch(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Role
		required models.Role
		target   string
	}{
		{"organizer on customer route", models.RoleOrganizer, models.RoleCustomer, OrganizerHome},
		{"customer on organizer route", models.RoleCustomer, models.RoleOrganizer, CustomerHome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(authed(tt.role), tt.required, "/whatever")
			if d.Action != ActionRedirect || d.Target != tt.target {
				t.Fatalf("got %+v, want redirect to %s", d, tt.target)
			}
		})
	}
}

func TestDecideMatchingRoleRenders(t *testing.T) {
	if d := Decide(authed(models.RoleCustomer), models.RoleCustomer, "/my-tickets"); d.Action != ActionRender {
		t.Errorf("customer on customer route: %+v", d)
	}
	if d := Decide(authed(models.RoleOrganizer), models.RoleOrganizer, "/dashboard"); d.Action != ActionRender {
		t.Errorf("organizer on organizer route: %+v", d)
	}
}

func TestDecideAdminBypassesRoleGates(t *testing.T) {
	for _, required := range []models.Role{models.RoleCustomer, models.RoleOrganizer} {
		d := Decide(authed(models.RoleAdmin), required, "/anywhere")
		if d.Action != ActionRender {
			t.Errorf("admin gated on required=%s: %+v", required, d)
		}
	}
}

func TestDecideDefaultSteering(t *testing.T) {
	d := Decide(authed(models.RoleOrganizer), "", CustomerHome)
	if d.Action != ActionRedirect || d.Target != OrganizerHome {
		t.Errorf("organizer on customer home: %+v", d)
	}

	d = Decide(authed(models.RoleCustomer), "", OrganizerHome)
	if d.Action != ActionRedirect || d.Target != CustomerHome {
		t.Errorf("customer on organizer home: %+v", d)
	}

	d = Decide(authed(models.RoleCustomer), "", "/events")
	if d.Action != ActionRender {
		t.Errorf("customer on neutral route: %+v", d)
	}
}
