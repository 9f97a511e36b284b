package domain

import "testing"

func TestUser_HasPermission(t *testing.T) {
	tests := []struct {
		name       string
		user       User
		permission string
		want       bool
	}{
		{
			name:       "literal match",
			user:       User{Permissions: []string{"courses.read", "courses.enroll"}},
			permission: "courses.enroll",
			want:       true,
		},
		{
			name:       "wildcard grants everything",
			user:       User{Permissions: []string{Wildcard}},
			permission: "reports.export",
			want:       true,
		},
		{
			name:       "admin role grants everything",
			user:       User{Roles: []string{RoleAdmin}},
			permission: "reports.export",
			want:       true,
		},
		{
			name:       "superuser role grants everything",
			user:       User{Roles: []string{RoleSuperuser}},
			permission: "reports.export",
			want:       true,
		},
		{
			name:       "no match",
			user:       User{Roles: []string{"teacher"}, Permissions: []string{"courses.read"}},
			permission: "courses.delete",
			want:       false,
		},
		{
			name:       "empty user",
			user:       User{},
			permission: "courses.read",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.HasPermission(tt.permission); got != tt.want {
				t.Errorf("HasPermission(%q) = %v, want %v", tt.permission, got, tt.want)
			}
		})
	}
}

func TestUser_HasRole(t *testing.T) {
	user := User{Roles: []string{"teacher", "grader"}}

	if !user.HasRole("teacher") {
		t.Error("HasRole(teacher) = false, want true")
	}
	if user.HasRole("admin") {
		t.Error("HasRole(admin) = true, want false")
	}
	empty := User{}
	if empty.HasRole("teacher") {
		t.Error("HasRole on empty user = true, want false")
	}
}
