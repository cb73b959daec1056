package user

import "testing"

func TestUser_ApplyNames(t *testing.T) {
	tests := []struct {
		name                string
		firstName, lastName string
		newFirst, newLast   string
		wantFirst, wantLast string
		wantChanged         bool
	}{
		{name: "both empty: no-op", firstName: "Awe", lastName: "Some", wantFirst: "Awe", wantLast: "Some"},
		{name: "same values: no-op", firstName: "Awe", lastName: "Some", newFirst: "Awe", newLast: "Some", wantFirst: "Awe", wantLast: "Some"},
		{name: "first name updated", firstName: "Awe", lastName: "Some", newFirst: "New", wantFirst: "New", wantLast: "Some", wantChanged: true},
		{name: "last name updated", firstName: "Awe", newLast: "Name", wantFirst: "Awe", wantLast: "Name", wantChanged: true},
		{name: "both updated", newFirst: "New", newLast: "Name", wantFirst: "New", wantLast: "Name", wantChanged: true},
		{name: "empty input never clears", firstName: "Awe", lastName: "Some", newFirst: "", newLast: "", wantFirst: "Awe", wantLast: "Some"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr := User{FirstName: tt.firstName, LastName: tt.lastName}
			if changed := usr.ApplyNames(tt.newFirst, tt.newLast); changed != tt.wantChanged {
				t.Errorf("ApplyNames() = %v, want %v", changed, tt.wantChanged)
			}
			if usr.FirstName != tt.wantFirst || usr.LastName != tt.wantLast {
				t.Errorf("names = (%q, %q), want (%q, %q)", usr.FirstName, usr.LastName, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestUser_password(t *testing.T) {
	var usr User
	if usr.HasUsableCredential() {
		t.Error("HasUsableCredential() = true on a fresh user")
	}

	if err := usr.SetPassword("s3cr3t"); err != nil {
		t.Fatalf("SetPassword() failed, %v", err)
	}
	if !usr.HasUsableCredential() {
		t.Error("HasUsableCredential() = false after SetPassword()")
	}
	if err := usr.CheckPassword("s3cr3t"); err != nil {
		t.Errorf("CheckPassword() failed, %v", err)
	}
	if err := usr.CheckPassword("wrong"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

func TestUser_roles(t *testing.T) {
	tests := []struct {
		name                          string
		roles                         []string
		isAdmin, isTeacher, isStudent bool
	}{
		{name: "none"},
		{name: "student", roles: []string{RoleStudent}, isStudent: true},
		{name: "teacher", roles: []string{RoleTeacher}, isTeacher: true},
		{name: "admin", roles: []string{RoleAdmin}, isAdmin: true},
		{name: "teacher and admin", roles: []string{RoleTeacher, RoleAdmin}, isTeacher: true, isAdmin: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr := User{Roles: tt.roles}
			if usr.IsAdmin() != tt.isAdmin || usr.IsTeacher() != tt.isTeacher || usr.IsStudent() != tt.isStudent {
				t.Errorf("roles = (%v, %v, %v), want (%v, %v, %v)",
					usr.IsAdmin(), usr.IsTeacher(), usr.IsStudent(), tt.isAdmin, tt.isTeacher, tt.isStudent)
			}
		})
	}
}
