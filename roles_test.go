package membership

import "testing"

func TestMemberRoleIsValid(t *testing.T) {
	for _, role := range GetAllRoles() {
		if !role.IsValid() {
			t.Fatalf("predefined role %q should be valid", role)
		}
	}

	if MemberRole("superuser").IsValid() {
		t.Fatal("unknown role should not be valid")
	}

	if MemberRole("").IsValid() {
		t.Fatal("empty role should not be valid")
	}
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("admin")
	if !ok || role != RoleAdmin {
		t.Fatalf("expected admin role, got %q ok=%t", role, ok)
	}

	if _, ok := ParseRole("Admin"); ok {
		t.Fatal("role parsing is case sensitive")
	}

	if _, ok := ParseRole("owner"); ok {
		t.Fatal("unknown roles should not parse")
	}
}
