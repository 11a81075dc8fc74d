package domain

import "time"

// ShareSettings bundles the per-share feature flags.
type ShareSettings struct {
	AllowDownload   bool `json:"allow_download"`
	AllowComments   bool `json:"allow_comments"`
	AllowFork       bool `json:"allow_fork"`
	RequireApproval bool `json:"require_approval"`
}

// DefaultShareSettings are applied when the granter supplies none.
func DefaultShareSettings() ShareSettings {
	return ShareSettings{AllowComments: true}
}

// Share is a directed, project-scoped grant from the project owner to
// another principal. Unique per (ProjectID, GrantedTo); re-sharing updates
// the existing row. A share past its expiry is inert: every read path must
// treat it as absent, though the row may linger until housekeeping runs.
type Share struct {
	ID          string
	ProjectID   string
	GrantedBy   string
	GrantedTo   string
	AccessLevel AccessLevel
	Settings    ShareSettings
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Expired reports whether the share is past its expiry at the given instant.
// Shares without an expiry never expire.
func (s Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !s.ExpiresAt.After(now)
}

// SharedProject joins a live share with the minimal project and owner
// display data callers need to render a "shared with me" listing.
type SharedProject struct {
	Share       Share
	ProjectName string
	OwnerID     string
	OwnerName   string
}
