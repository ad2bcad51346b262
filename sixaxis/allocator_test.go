package sixaxis

import "testing"

func TestAllocateSequential(t *testing.T) {
	a := &idAllocator{}
	for want := 0; want < 3; want++ {
		id, err := a.allocate()
		if err != nil {
			t.Fatal(err)
		}
		if id != want {
			t.Errorf("allocate = %d, want %d", id, want)
		}
	}
}

func TestAllocateFirstFitReuse(t *testing.T) {
	a := &idAllocator{}
	var ids [3]int
	for i := range ids {
		ids[i], _ = a.allocate()
	}

	a.release(ids[1])
	id, err := a.allocate()
	if err != nil {
		t.Fatal(err)
	}
	if id != ids[1] {
		t.Errorf("allocate after release = %d, want %d", id, ids[1])
	}
}

func TestAllocateExhaustion(t *testing.T) {
	a := &idAllocator{}
	for i := 0; i < maxDevices; i++ {
		if _, err := a.allocate(); err != nil {
			t.Fatalf("allocation %d failed: %v", i, err)
		}
	}
	if _, err := a.allocate(); err != errIdExhausted {
		t.Errorf("expected errIdExhausted, got %v", err)
	}

	a.release(7)
	id, err := a.allocate()
	if err != nil {
		t.Fatal(err)
	}
	if id != 7 {
		t.Errorf("allocate = %d, want 7", id)
	}
}

func TestReleaseOutOfRange(t *testing.T) {
	a := &idAllocator{}
	a.release(-1)
	a.release(maxDevices)
	if id, _ := a.allocate(); id != 0 {
		t.Errorf("allocate = %d, want 0", id)
	}
}
