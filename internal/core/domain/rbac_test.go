package domain

import "testing"

func TestPermissionGrantCovers(t *testing.T) {
	cases := []struct {
		name     string
		grant    PermissionGrant
		resource ResourceType
		action   Action
		want     bool
	}{
		{"exact match", PermissionGrant{ResourceProject, ActionRead}, ResourceProject, ActionRead, true},
		{"wrong resource", PermissionGrant{ResourceProject, ActionRead}, ResourceGroup, ActionRead, false},
		{"wrong action", PermissionGrant{ResourceProject, ActionRead}, ResourceProject, ActionUpdate, false},
		{"wildcard resource", PermissionGrant{ResourceAny, ActionRead}, ResourceShare, ActionRead, true},
		{"wildcard action", PermissionGrant{ResourceGroup, ActionAny}, ResourceGroup, ActionDelete, true},
		{"full wildcard", PermissionGrant{ResourceAny, ActionAny}, ResourceGroupMembers, ActionManage, true},
		{"manage implies create", PermissionGrant{ResourceGroup, ActionManage}, ResourceGroup, ActionCreate, true},
		{"manage implies read", PermissionGrant{ResourceGroup, ActionManage}, ResourceGroup, ActionRead, true},
		{"manage implies update", PermissionGrant{ResourceGroup, ActionManage}, ResourceGroup, ActionUpdate, true},
		{"manage implies delete", PermissionGrant{ResourceGroup, ActionManage}, ResourceGroup, ActionDelete, true},
		{"manage covers manage", PermissionGrant{ResourceGroup, ActionManage}, ResourceGroup, ActionManage, true},
		{"manage does not cross resources", PermissionGrant{ResourceGroup, ActionManage}, ResourceProject, ActionDelete, false},
		{"crud does not imply manage", PermissionGrant{ResourceGroup, ActionDelete}, ResourceGroup, ActionManage, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.grant.Covers(tc.resource, tc.action); got != tc.want {
				t.Fatalf("Covers(%s, %s) = %v, want %v", tc.resource, tc.action, got, tc.want)
			}
		})
	}
}

func TestHasPermission(t *testing.T) {
	cases := []struct {
		name     string
		role     Role
		resource ResourceType
		action   Action
		want     bool
	}{
		{"super admin does everything", RoleSuperAdmin, ResourceShare, ActionManage, true},
		{"system admin manages any resource", RoleAdmin, ResourceShare, ActionDelete, true},
		{"system admin manage is explicit", RoleAdmin, ResourceGroupMembers, ActionManage, true},
		{"user creates projects", RoleUser, ResourceProject, ActionCreate, true},
		{"user cannot delete projects", RoleUser, ResourceProject, ActionDelete, false},
		{"user cannot read group members", RoleUser, ResourceGroupMembers, ActionRead, false},
		{"owner manages members", RoleOwner, ResourceGroupMembers, ActionManage, true},
		{"member updates projects", RoleMember, ResourceProject, ActionUpdate, true},
		{"member cannot manage members", RoleMember, ResourceGroupMembers, ActionManage, false},
		{"viewer reads members", RoleViewer, ResourceGroupMembers, ActionRead, true},
		{"viewer cannot update projects", RoleViewer, ResourceProject, ActionUpdate, false},
		{"unknown role has nothing", Role("GHOST"), ResourceProject, ActionRead, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasPermission(tc.role, tc.resource, tc.action); got != tc.want {
				t.Fatalf("HasPermission(%s, %s, %s) = %v, want %v", tc.role, tc.resource, tc.action, got, tc.want)
			}
		})
	}
}

func TestHasAnyPermission(t *testing.T) {
	if !HasAnyPermission(RoleViewer, ResourceProject, ActionUpdate, ActionRead) {
		t.Fatal("viewer should hold at least read on projects")
	}
	if HasAnyPermission(RoleViewer, ResourceProject, ActionUpdate, ActionDelete) {
		t.Fatal("viewer holds neither update nor delete on projects")
	}
	if HasAnyPermission(RoleOwner, ResourceProject) {
		t.Fatal("no actions requested should never match")
	}
}

func TestHasAllPermissions(t *testing.T) {
	if !HasAllPermissions(RoleMember, ResourceProject, ActionCreate, ActionRead, ActionUpdate) {
		t.Fatal("member should hold create, read, and update on projects")
	}
	if HasAllPermissions(RoleMember, ResourceProject, ActionRead, ActionDelete) {
		t.Fatal("member must not hold delete on projects")
	}
	if !HasAllPermissions(RoleViewer, ResourceProject) {
		t.Fatal("empty action list is vacuously satisfied")
	}
}

func TestRoleClassification(t *testing.T) {
	for _, role := range GroupRoles {
		if !role.IsGroupRole() {
			t.Fatalf("%s should be assignable to a membership", role)
		}
	}
	if RoleSuperAdmin.IsGroupRole() {
		t.Fatal("SUPER_ADMIN is not a group role")
	}
	if RoleUser.IsGroupRole() {
		t.Fatal("USER is not a group role")
	}

	if !RoleAdmin.IsSystemElevated() || !RoleSuperAdmin.IsSystemElevated() {
		t.Fatal("ADMIN and SUPER_ADMIN bypass per-resource grants")
	}
	if RoleOwner.IsSystemElevated() || RoleUser.IsSystemElevated() {
		t.Fatal("OWNER and USER must not bypass grants")
	}
}
