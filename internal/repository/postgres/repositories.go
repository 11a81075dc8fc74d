package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Groups      *GroupRepository
	Members     *MembershipRepository
	Invitations *InvitationRepository
	Shares      *ShareRepository
	Projects    *ProjectRepository
	Directory   *PrincipalDirectory
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Groups:      NewGroupRepository(pool),
		Members:     NewMembershipRepository(pool),
		Invitations: NewInvitationRepository(pool),
		Shares:      NewShareRepository(pool),
		Projects:    NewProjectRepository(pool),
		Directory:   NewPrincipalDirectory(pool),
	}
}
