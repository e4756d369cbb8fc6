package models

import "testing"

func TestRoleOrder(t *testing.T) {
	t.Parallel()

	samples := [...]struct {
		role, required Role
		expected       bool
	}{
		{RoleViewer, RoleViewer, true},
		{RoleViewer, RoleEditor, false},
		{RoleViewer, RoleAdmin, false},
		{RoleEditor, RoleViewer, true},
		{RoleEditor, RoleEditor, true},
		{RoleEditor, RoleAdmin, false},
		{RoleAdmin, RoleViewer, true},
		{RoleAdmin, RoleEditor, true},
		{RoleAdmin, RoleAdmin, true},
		{Role("owner"), RoleViewer, false},
		{RoleAdmin, Role(""), false},
	}

	for _, s := range samples {
		if got := s.role.AtLeast(s.required); got != s.expected {
			t.Errorf("%q.AtLeast(%q): expected %v, got %v", s.role, s.required, s.expected, got)
		}
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"viewer", "editor", "admin"} {
		r, err := ParseRole(s)
		if err != nil || string(r) != s {
			t.Errorf("ParseRole(%q) = %q, %v", s, r, err)
		}
	}
	for _, s := range []string{"", "Admin", "owner", " viewer"} {
		if _, err := ParseRole(s); err == nil {
			t.Errorf("ParseRole(%q): expected error", s)
		}
	}
}
