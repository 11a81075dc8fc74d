package domain

import (
	"encoding/json"
	"testing"
)

func TestAccessLevelOrdering(t *testing.T) {
	if !(AccessLevelNone < AccessLevelView && AccessLevelView < AccessLevelEdit && AccessLevelEdit < AccessLevelAdmin) {
		t.Fatal("access levels must order NONE < VIEW < EDIT < ADMIN")
	}
}

func TestParseAccessLevel(t *testing.T) {
	for _, level := range []AccessLevel{AccessLevelNone, AccessLevelView, AccessLevelEdit, AccessLevelAdmin} {
		parsed, err := ParseAccessLevel(level.String())
		if err != nil {
			t.Fatalf("ParseAccessLevel(%s): %v", level, err)
		}
		if parsed != level {
			t.Fatalf("ParseAccessLevel(%s) = %v, want %v", level, parsed, level)
		}
	}

	if _, err := ParseAccessLevel("SUPREME"); err == nil {
		t.Fatal("expected error for unknown level name")
	}
	if _, err := ParseAccessLevel("view"); err == nil {
		t.Fatal("level names are case sensitive on the wire")
	}
}

func TestAccessLevelJSON(t *testing.T) {
	data, err := json.Marshal(AccessLevelEdit)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"EDIT"` {
		t.Fatalf("expected \"EDIT\", got %s", data)
	}

	var level AccessLevel
	if err := json.Unmarshal([]byte(`"ADMIN"`), &level); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if level != AccessLevelAdmin {
		t.Fatalf("expected ADMIN, got %v", level)
	}

	if err := json.Unmarshal([]byte(`"ROOT"`), &level); err == nil {
		t.Fatal("expected error for unknown level name")
	}
}

func TestGroupAccessLevel(t *testing.T) {
	cases := []struct {
		role Role
		want AccessLevel
	}{
		{RoleOwner, AccessLevelAdmin},
		{RoleAdmin, AccessLevelAdmin},
		{RoleMember, AccessLevelEdit},
		{RoleViewer, AccessLevelView},
		{RoleUser, AccessLevelNone},
		{Role("GHOST"), AccessLevelNone},
	}

	for _, tc := range cases {
		if got := tc.role.GroupAccessLevel(); got != tc.want {
			t.Fatalf("GroupAccessLevel(%s) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestMinimumLevelFor(t *testing.T) {
	cases := []struct {
		action Action
		want   AccessLevel
	}{
		{ActionRead, AccessLevelView},
		{ActionCreate, AccessLevelEdit},
		{ActionUpdate, AccessLevelEdit},
		{ActionDelete, AccessLevelAdmin},
		{ActionManage, AccessLevelAdmin},
		{Action("transmogrify"), AccessLevelAdmin},
	}

	for _, tc := range cases {
		if got := MinimumLevelFor(tc.action); got != tc.want {
			t.Fatalf("MinimumLevelFor(%s) = %v, want %v", tc.action, got, tc.want)
		}
	}
}
