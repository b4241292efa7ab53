package permission

// Key is an opaque permission identifier drawn from the closed registry
// below. The registry is process-wide static data; nothing mutates it at
// runtime. Keep these stable; they are part of the API contract with clients.
type Key string

const (
	// Workspace administration.
	KeyWorkspaceView           Key = "workspace:view"
	KeyWorkspaceSettingsView   Key = "workspace:settings.view"
	KeyWorkspaceSettingsManage Key = "workspace:settings.manage"
	KeyWorkspaceMembersView    Key = "workspace:members.view"
	KeyWorkspaceMembersManage  Key = "workspace:members.manage"
	KeyWorkspaceBillingManage  Key = "workspace:billing.manage"
	KeyWorkspaceDelete         Key = "workspace:delete"

	// Brand management.
	KeyBrandView   Key = "brand:view"
	KeyBrandManage Key = "brand:manage"

	// Studio: content authoring and publishing.
	KeyContentView    Key = "studio:content.view"
	KeyContentCreate  Key = "studio:content.create"
	KeyContentEdit    Key = "studio:content.edit"
	KeyContentPublish Key = "studio:content.publish"
	KeyContentDelete  Key = "studio:content.delete"

	// Studio: publication scheduling.
	KeyScheduleView   Key = "studio:schedule.view"
	KeyScheduleManage Key = "studio:schedule.manage"

	// Tasks.
	KeyTaskView   Key = "task:view"
	KeyTaskManage Key = "task:manage"
)

// Set is an unordered collection of permission keys. Sets handed out by the
// resolver are shared; treat them as read-only.
type Set map[Key]struct{}

func NewSet(keys ...Key) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Contains reports whether every key of other is in s.
func (s Set) Contains(other Set) bool {
	for k := range other {
		if !s.Has(k) {
			return false
		}
	}
	return true
}
