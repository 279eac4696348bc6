package rbac

// Permission is a user's workspace-wide permission level. Channel ownership is
// tracked per channel; a global Owner clears every owner-gated check
// regardless of per-channel ownership.
type Permission int

const (
	Owner  Permission = 1
	Member Permission = 2
)

func Valid(p Permission) bool {
	return p == Owner || p == Member
}

// GlobalOwner reports whether the permission grants elevated rights in every
// channel.
func (p Permission) GlobalOwner() bool {
	return p == Owner
}
