package interlock

import (
	"testing"

	"github.com/ironleaf-farm/farmcore/internal/farmproc"
)

func TestFreshStateIsUnlockedAndUnowned(t *testing.T) {
	s := NewState()
	if s.Locked() {
		t.Fatal("fresh state should be unlocked")
	}
	if _, ok := s.FirmwareOwner(); ok {
		t.Fatal("fresh state should have no firmware owner")
	}
	if !s.OwnsOrFree(farmproc.NewRef()) {
		t.Fatal("OwnsOrFree should be true when no one owns the firmware")
	}
}

func TestAcquireAndReleaseFirmware(t *testing.T) {
	s := NewState()
	a := farmproc.NewRef()
	b := farmproc.NewRef()

	s.AcquireFirmware(a)
	if !s.OwnsOrFree(a) {
		t.Fatal("a should own the firmware")
	}
	if s.OwnsOrFree(b) {
		t.Fatal("b should not be considered free when a owns the firmware")
	}

	// Releasing on behalf of the wrong ref must not clear ownership.
	s.ReleaseFirmwareIfOwner(b)
	if owner, ok := s.FirmwareOwner(); !ok || owner != a {
		t.Fatal("release by non-owner should be a no-op")
	}

	s.ReleaseFirmwareIfOwner(a)
	if _, ok := s.FirmwareOwner(); ok {
		t.Fatal("release by owner should clear fw_proc")
	}
	if !s.OwnsOrFree(b) {
		t.Fatal("firmware should be free again")
	}
}

func TestLockUnlockIdempotentAndPreservesFirmwareOwner(t *testing.T) {
	s := NewState()
	owner := farmproc.NewRef()
	s.AcquireFirmware(owner)

	s.Lock()
	s.Lock() // idempotent
	if !s.Locked() {
		t.Fatal("expected locked")
	}
	if o, ok := s.FirmwareOwner(); !ok || o != owner {
		t.Fatal("locking must not disturb firmware ownership")
	}

	s.Unlock()
	if s.Locked() {
		t.Fatal("expected unlocked")
	}
	if o, ok := s.FirmwareOwner(); !ok || o != owner {
		t.Fatal("unlocking must not clear fw_proc")
	}
}
