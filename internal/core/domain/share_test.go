package domain

import (
	"testing"
	"time"
)

func TestShareExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	permanent := Share{}
	if permanent.Expired(now) {
		t.Fatal("a share without an expiry never expires")
	}

	future := now.Add(time.Hour)
	if (Share{ExpiresAt: &future}).Expired(now) {
		t.Fatal("share expiring in the future is live")
	}

	past := now.Add(-time.Second)
	if !(Share{ExpiresAt: &past}).Expired(now) {
		t.Fatal("share past its expiry is expired")
	}

	// Expiry is exclusive: a share expiring exactly now is already inert.
	if !(Share{ExpiresAt: &now}).Expired(now) {
		t.Fatal("share expiring at the current instant is expired")
	}
}

func TestDefaultShareSettings(t *testing.T) {
	settings := DefaultShareSettings()
	if !settings.AllowComments {
		t.Fatal("comments are on by default")
	}
	if settings.AllowDownload || settings.AllowFork || settings.RequireApproval {
		t.Fatal("all other flags default to off")
	}
}

func TestCountOwners(t *testing.T) {
	members := []Membership{
		{UserID: "u1", Role: RoleOwner},
		{UserID: "u2", Role: RoleMember},
		{UserID: "u3", Role: RoleOwner},
		{UserID: "u4", Role: RoleViewer},
	}
	if got := CountOwners(members); got != 2 {
		t.Fatalf("CountOwners = %d, want 2", got)
	}
	if got := CountOwners(nil); got != 0 {
		t.Fatalf("CountOwners(nil) = %d, want 0", got)
	}
}
