package rbac

import "testing"

func TestValid(t *testing.T) {
	if !Valid(Owner) || !Valid(Member) {
		t.Error("expected owner and member to be valid")
	}
	if Valid(Permission(0)) || Valid(Permission(3)) {
		t.Error("expected out-of-range permissions to be invalid")
	}
}

func TestGlobalOwner(t *testing.T) {
	if !Owner.GlobalOwner() {
		t.Error("owner should have global owner rights")
	}
	if Member.GlobalOwner() {
		t.Error("member should not have global owner rights")
	}
}
