package domain

import (
	"encoding/json"
	"fmt"
)

// AccessLevel is the ordered permission tier on a single project:
// NONE < VIEW < EDIT < ADMIN.
type AccessLevel int

const (
	AccessLevelNone AccessLevel = iota
	AccessLevelView
	AccessLevelEdit
	AccessLevelAdmin
)

var accessLevelNames = map[AccessLevel]string{
	AccessLevelNone:  "NONE",
	AccessLevelView:  "VIEW",
	AccessLevelEdit:  "EDIT",
	AccessLevelAdmin: "ADMIN",
}

func (l AccessLevel) String() string {
	if name, ok := accessLevelNames[l]; ok {
		return name
	}
	return "NONE"
}

// ParseAccessLevel converts the wire representation back to an AccessLevel.
func ParseAccessLevel(s string) (AccessLevel, error) {
	for level, name := range accessLevelNames {
		if name == s {
			return level, nil
		}
	}
	return AccessLevelNone, fmt.Errorf("unknown access level %q", s)
}

// MarshalJSON encodes the level as its name so cached decisions and API
// payloads stay readable.
func (l AccessLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *AccessLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	level, err := ParseAccessLevel(name)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// DecisionReason names the mechanism that produced an access decision.
type DecisionReason string

const (
	ReasonOwner      DecisionReason = "OWNER"
	ReasonSystemRole DecisionReason = "SYSTEM_ROLE"
	ReasonShare      DecisionReason = "SHARE"
	ReasonGroupRole  DecisionReason = "GROUP_ROLE"
	ReasonNoGrant    DecisionReason = "NO_GRANT"
)

// AccessDecision is the resolved outcome of an authorization check. Callers
// receive the level and the justifying mechanism, never a bare boolean.
type AccessDecision struct {
	Allowed     bool           `json:"allowed"`
	AccessLevel AccessLevel    `json:"access_level"`
	IsOwner     bool           `json:"is_owner"`
	Reason      DecisionReason `json:"reason"`
}

// GroupAccessLevel maps a membership role to the project access level it
// confers: OWNER/ADMIN to ADMIN, MEMBER to EDIT, VIEWER to VIEW.
func (r Role) GroupAccessLevel() AccessLevel {
	switch r {
	case RoleOwner, RoleAdmin:
		return AccessLevelAdmin
	case RoleMember:
		return AccessLevelEdit
	case RoleViewer:
		return AccessLevelView
	}
	return AccessLevelNone
}

// MinimumLevelFor returns the lowest access level that permits the action on
// a project: read needs VIEW, create/update need EDIT, delete/manage need
// ADMIN. Unknown actions require ADMIN so they fail closed.
func MinimumLevelFor(action Action) AccessLevel {
	switch action {
	case ActionRead:
		return AccessLevelView
	case ActionCreate, ActionUpdate:
		return AccessLevelEdit
	default:
		return AccessLevelAdmin
	}
}
