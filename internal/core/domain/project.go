package domain

// Project is the read-only view of a protected resource this subsystem
// needs: who owns it and which group, if any, it belongs to. Ownership never
// changes through this service.
type Project struct {
	ID      string
	Name    string
	OwnerID string
	TeamID  *string
}
