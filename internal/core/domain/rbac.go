package domain

// Role identifies either a system-wide role (USER, ADMIN, SUPER_ADMIN) or a
// group-scoped role (OWNER, ADMIN, MEMBER, VIEWER). ADMIN is shared between
// the two scopes and carries the union of both grant sets.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleOwner      Role = "OWNER"
	RoleMember     Role = "MEMBER"
	RoleViewer     Role = "VIEWER"
)

// GroupRoles enumerates the roles assignable to a group membership.
var GroupRoles = []Role{RoleOwner, RoleAdmin, RoleMember, RoleViewer}

// IsGroupRole reports whether the role may be attached to a membership.
func (r Role) IsGroupRole() bool {
	for _, candidate := range GroupRoles {
		if r == candidate {
			return true
		}
	}
	return false
}

// IsSystemElevated reports whether the role bypasses per-resource grants.
func (r Role) IsSystemElevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ResourceType is the kind of object a permission grant applies to.
// ResourceAny is the explicit wildcard variant.
type ResourceType string

const (
	ResourceAny          ResourceType = "*"
	ResourceProject      ResourceType = "project"
	ResourceGroup        ResourceType = "group"
	ResourceGroupMembers ResourceType = "group_members"
	ResourceShare        ResourceType = "share"
)

// Action is an operation on a resource type. ActionManage implies the four
// CRUD actions for the same resource type. ActionAny is the explicit wildcard.
type Action string

const (
	ActionAny    Action = "*"
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionManage Action = "manage"
)

// PermissionGrant pairs a resource type with an action, either of which may
// be the wildcard variant.
type PermissionGrant struct {
	Resource ResourceType
	Action   Action
}

// rolePermissions is the static permission catalog. Changing it is a
// deployment concern; there are no runtime mutation paths.
var rolePermissions = map[Role][]PermissionGrant{
	RoleSuperAdmin: {
		{ResourceAny, ActionAny},
	},
	RoleAdmin: {
		{ResourceAny, ActionManage},
	},
	RoleUser: {
		{ResourceProject, ActionCreate},
		{ResourceProject, ActionRead},
		{ResourceGroup, ActionCreate},
		{ResourceGroup, ActionRead},
		{ResourceShare, ActionRead},
	},
	RoleOwner: {
		{ResourceGroup, ActionManage},
		{ResourceGroupMembers, ActionManage},
		{ResourceProject, ActionManage},
		{ResourceShare, ActionManage},
	},
	RoleMember: {
		{ResourceProject, ActionCreate},
		{ResourceProject, ActionRead},
		{ResourceProject, ActionUpdate},
		{ResourceGroup, ActionRead},
		{ResourceGroupMembers, ActionRead},
	},
	RoleViewer: {
		{ResourceProject, ActionRead},
		{ResourceGroup, ActionRead},
		{ResourceGroupMembers, ActionRead},
	},
}

// Covers reports whether the grant authorizes the requested resource/action
// pair, honoring wildcards and the manage-implies-CRUD rule.
func (g PermissionGrant) Covers(resource ResourceType, action Action) bool {
	if g.Resource != ResourceAny && g.Resource != resource {
		return false
	}
	switch g.Action {
	case ActionAny:
		return true
	case action:
		return true
	case ActionManage:
		return action == ActionCreate || action == ActionRead ||
			action == ActionUpdate || action == ActionDelete
	}
	return false
}

// HasPermission consults the catalog for the role. Deterministic and
// side-effect free; safe to call from any layer without IO.
func HasPermission(role Role, resource ResourceType, action Action) bool {
	for _, grant := range rolePermissions[role] {
		if grant.Covers(resource, action) {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the role holds at least one of the actions
// on the resource type.
func HasAnyPermission(role Role, resource ResourceType, actions ...Action) bool {
	return anyOf(actions, func(a Action) bool {
		return HasPermission(role, resource, a)
	})
}

// HasAllPermissions reports whether the role holds every listed action on the
// resource type.
func HasAllPermissions(role Role, resource ResourceType, actions ...Action) bool {
	return allOf(actions, func(a Action) bool {
		return HasPermission(role, resource, a)
	})
}

func anyOf[T any](items []T, pred func(T) bool) bool {
	for _, item := range items {
		if pred(item) {
			return true
		}
	}
	return false
}

func allOf[T any](items []T, pred func(T) bool) bool {
	for _, item := range items {
		if !pred(item) {
			return false
		}
	}
	return true
}
