package helpers

import (
	"testing"

	"github.com/google/uuid"

	"tixbay/internal/models"
)

func TestIsPasswordStrong(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"Passw0rd", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := IsPasswordStrong(tc.password); got != tc.want {
			t.Errorf("IsPasswordStrong(%q) = %v, want %v", tc.password, got, tc.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.com", "  padded@example.com  "}
	for _, e := range valid {
		if !IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = false, want true", e)
		}
	}

	invalid := []string{"", "plain", "no@tld", "spaces in@example.com", "@example.com"}
	for _, e := range invalid {
		if IsValidEmail(e) {
			t.Errorf("IsValidEmail(%q) = true, want false", e)
		}
	}
}

func TestGenerateTicketCodeIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateTicketCode()
		if code == "" {
			t.Fatal("empty ticket code")
		}
		if seen[code] {
			t.Fatalf("duplicate ticket code generated: %s", code)
		}
		seen[code] = true
	}
}

func TestEnhancedClaimsRoleHelpers(t *testing.T) {
	organizer := &EnhancedClaims{Role: models.RoleOrganizer, UserID: uuid.NewString()}
	if !organizer.IsOrganizer() || organizer.IsCustomer() || organizer.IsAdmin() {
		t.Errorf("organizer claims misclassified: %+v", organizer)
	}
	if !organizer.HasRole(models.RoleOrganizer) {
		t.Error("HasRole(organizer) = false for organizer claims")
	}
	if !organizer.IsOwner(organizer.UserID) {
		t.Error("IsOwner returned false for own id")
	}
	if organizer.IsOwner(uuid.NewString()) {
		t.Error("IsOwner returned true for foreign id")
	}

	admin := &EnhancedClaims{Role: models.RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("IsAdmin() = false for admin claims")
	}
}
