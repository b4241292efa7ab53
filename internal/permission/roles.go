package permission

// Role names. Keep these stable; they are part of the membership contract.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// MembershipStatus gates whether a membership confers any permissions at all.
type MembershipStatus string

const (
	StatusActive    MembershipStatus = "active"
	StatusInvited   MembershipStatus = "invited"
	StatusSuspended MembershipStatus = "suspended"
)

// rolePermissions is the static role→permission table, built once at process
// start and never mutated, so concurrent readers need no synchronization.
//
// Sets are strictly nested: viewer ⊂ editor ⊂ admin ⊂ owner. No role grants
// a key a higher role lacks. A membership has exactly one role, so resolution
// is always "the exact set for that role" — there is no multi-role union.
var rolePermissions map[Role]Set

func init() {
	viewer := NewSet(
		KeyWorkspaceView,
		KeyBrandView,
		KeyContentView,
		KeyScheduleView,
		KeyTaskView,
	)

	editor := union(viewer, NewSet(
		KeyContentCreate,
		KeyContentEdit,
		KeyScheduleManage,
		KeyTaskManage,
	))

	admin := union(editor, NewSet(
		KeyWorkspaceSettingsView,
		KeyWorkspaceSettingsManage,
		KeyWorkspaceMembersView,
		KeyWorkspaceMembersManage,
		KeyBrandManage,
		KeyContentPublish,
		KeyContentDelete,
	))

	owner := union(admin, NewSet(
		KeyWorkspaceBillingManage,
		KeyWorkspaceDelete,
	))

	rolePermissions = map[Role]Set{
		RoleViewer: viewer,
		RoleEditor: editor,
		RoleAdmin:  admin,
		RoleOwner:  owner,
	}
}

// ForRole returns the static permission set for a role. Unknown roles yield
// the empty set, mirroring how a missing membership resolves; callers must
// not mutate the result.
func ForRole(role Role) Set {
	if s, ok := rolePermissions[role]; ok {
		return s
	}
	return Set{}
}

func union(a, b Set) Set {
	out := make(Set, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}
