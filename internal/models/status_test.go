package models

import (
	"testing"
)

func TestTicketTransferableOnlyWhenValid(t *testing.T) {
	cases := map[TicketStatus]bool{
		TicketValid:       true,
		TicketUsed:        false,
		TicketTransferred: false,
		TicketCancelled:   false,
	}

	for status, want := range cases {
		if got := status.Transferable(); got != want {
			t.Errorf("Transferable(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestTicketTransitions(t *testing.T) {
	if !TicketValid.CanTransitionTo(TicketUsed) {
		t.Error("Valid ticket should be usable at check-in")
	}
	if !TicketValid.CanTransitionTo(TicketTransferred) {
		t.Error("Valid ticket should be transferable")
	}
	if TicketUsed.CanTransitionTo(TicketTransferred) {
		t.Error("Used ticket must not be transferable")
	}
	if TicketTransferred.CanTransitionTo(TicketValid) {
		t.Error("Transferred is terminal for the previous owner")
	}
	if TicketCancelled.CanTransitionTo(TicketUsed) {
		t.Error("Cancelled ticket must not be usable")
	}
}

func TestEventTransitions(t *testing.T) {
	if !EventDraft.CanTransitionTo(EventPublished) {
		t.Error("Draft should publish")
	}
	if !EventPublished.CanTransitionTo(EventCancelled) {
		t.Error("Published should cancel")
	}
	if EventCancelled.CanTransitionTo(EventPublished) {
		t.Error("Cancelled must not republish")
	}
	if EventPublished.CanTransitionTo(EventDraft) {
		t.Error("Published must not revert to draft")
	}
}

func TestRoleIsAssignable(t *testing.T) {
	if !RoleCustomer.IsAssignable() || !RoleOrganizer.IsAssignable() {
		t.Error("customer and organizer are self-service roles")
	}
	if RoleAdmin.IsAssignable() {
		t.Error("admin must not be assignable at registration")
	}
}
