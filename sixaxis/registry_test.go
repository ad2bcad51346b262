package sixaxis

import "testing"

func TestRegisterSameClassReentry(t *testing.T) {
	r := NewRegistry()
	addr, _ := ParseAddress("00:11:22:33:44:55")

	duplicate, err := r.Register(addr, false)
	if err != nil || duplicate {
		t.Fatalf("first registration: duplicate=%v err=%v", duplicate, err)
	}

	// Clones report a fixed dummy address over the same transport class;
	// they are accepted and flagged for a naming suffix.
	duplicate, err = r.Register(addr, false)
	if err != nil {
		t.Fatalf("same-class re-entry rejected: %v", err)
	}
	if !duplicate {
		t.Error("same-class re-entry not flagged as duplicate")
	}
}

func TestRegisterCrossTransportRejected(t *testing.T) {
	r := NewRegistry()
	addr, _ := ParseAddress("00:11:22:33:44:55")

	if _, err := r.Register(addr, false); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register(addr, true); err != ErrAlreadyConnected {
		t.Errorf("cross-transport duplicate: err = %v, want ErrAlreadyConnected", err)
	}
}

func TestUnregisterFreesAddress(t *testing.T) {
	r := NewRegistry()
	addr, _ := ParseAddress("00:11:22:33:44:55")

	r.Register(addr, true)
	r.Unregister(addr)

	if duplicate, err := r.Register(addr, false); err != nil || duplicate {
		t.Errorf("re-register after unregister: duplicate=%v err=%v", duplicate, err)
	}
}

func TestUnregisterUnknownAddress(t *testing.T) {
	r := NewRegistry()
	addr, _ := ParseAddress("aa:bb:cc:dd:ee:ff")
	// Must be a no-op.
	r.Unregister(addr)
}

func TestRegisterDistinctAddresses(t *testing.T) {
	r := NewRegistry()
	a, _ := ParseAddress("00:11:22:33:44:55")
	b, _ := ParseAddress("00:11:22:33:44:56")

	if _, err := r.Register(a, true); err != nil {
		t.Fatal(err)
	}
	if duplicate, err := r.Register(b, false); err != nil || duplicate {
		t.Errorf("unrelated address: duplicate=%v err=%v", duplicate, err)
	}
}
