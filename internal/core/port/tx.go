package port

import "context"

// GroupTx bundles the repositories a group mutation may touch inside one
// store transaction. Two concurrent mutations on the same group serialize at
// the store, not via in-process locks, so the owner invariant holds across
// horizontally scaled replicas.
type GroupTx struct {
	Groups      GroupRepository
	Members     MembershipRepository
	Invitations InvitationRepository
	Projects    ProjectRepository
}

// GroupTxFunc runs fn inside a single atomic transaction; returning an error
// rolls every write back.
type GroupTxFunc func(ctx context.Context, fn func(tx GroupTx) error) error
