package permission

import "context"

// Resolver computes the effective permission set of a (user, workspace) pair.
//
// Total function: unknown user, missing membership, non-active status and
// unrecognized role all resolve to the empty set. "No permissions" is the
// correct answer for every input; errors are reserved for storage failures.
type Resolver struct {
	members MembershipReader
	cache   Cache
}

func NewResolver(members MembershipReader, cache Cache) *Resolver {
	if cache == nil {
		cache = NopCache{}
	}
	return &Resolver{members: members, cache: cache}
}

// EffectivePermissions returns the permission set the user currently holds
// in the workspace. The returned set is shared; callers must not mutate it.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID, workspaceID string) (Set, error) {
	if userID == "" || workspaceID == "" {
		return Set{}, nil
	}

	if perms, ok := r.cache.Get(ctx, userID, workspaceID); ok {
		return perms, nil
	}

	perms, err := r.compute(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}

	// Empty sets are cached too; a user hammering a workspace they do not
	// belong to should not hammer the membership store. The membership
	// mutation path invalidates on join as well as on role change.
	r.cache.Set(ctx, userID, workspaceID, perms)
	return perms, nil
}

// HasPermission reports whether key is in the user's effective set.
func (r *Resolver) HasPermission(ctx context.Context, userID, workspaceID string, key Key) (bool, error) {
	perms, err := r.EffectivePermissions(ctx, userID, workspaceID)
	if err != nil {
		return false, err
	}
	return perms.Has(key), nil
}

// Invalidate drops the cached set for one (user, workspace) pair. The
// workspace module calls this after any membership mutation: role change,
// status change, join, removal.
func (r *Resolver) Invalidate(ctx context.Context, userID, workspaceID string) {
	r.cache.Invalidate(ctx, userID, workspaceID)
}

func (r *Resolver) compute(ctx context.Context, userID, workspaceID string) (Set, error) {
	m, found, err := r.members.Find(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !found {
		return Set{}, nil
	}
	if m.Status != StatusActive {
		return Set{}, nil
	}
	return ForRole(m.Role), nil
}
