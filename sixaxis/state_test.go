package sixaxis

import "testing"

func TestApplyPatternWraps(t *testing.T) {
	var a, b actuatorState
	a.applyPattern(3)
	b.applyPattern(13)
	if a.ledOn != b.ledOn {
		t.Errorf("pattern 13 = %v, want pattern 3 %v", b.ledOn, a.ledOn)
	}
}

func TestPatternsDistinct(t *testing.T) {
	seen := make(map[[maxLeds]bool]int)
	for id, pattern := range ledPatterns {
		if prev, ok := seen[pattern]; ok {
			t.Errorf("pattern %v shared by ids %d and %d", pattern, prev, id)
		}
		seen[pattern] = id
	}
}

func TestEncodeAllOff(t *testing.T) {
	var s actuatorState
	o := s.encode()
	if o[10] != 0x20 {
		t.Errorf("bitmap = 0x%02X, want all-off flag 0x20", o[10])
	}
	if o[3] != 0 || o[5] != 0 {
		t.Errorf("rumble bytes = %d/%d, want 0/0", o[3], o[5])
	}
}

func TestClampDelay(t *testing.T) {
	for _, tt := range []struct {
		in   int
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{200, 200},
		{255, 255},
		{256, 255},
		{65536, 255},
	} {
		if got := clampDelay(tt.in); got != tt.want {
			t.Errorf("clampDelay(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
