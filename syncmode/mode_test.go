package syncmode

import "testing"

func TestRegisterResetAndShift(t *testing.T) {
	r := NewRegister()

	cur, prev := r.Snapshot()
	if cur.Mode != ModeUnset || prev.Mode != ModeUnset {
		t.Fatalf("fresh Register not unset: cur=%v prev=%v", cur.Mode, prev.Mode)
	}

	r.Reset(ModePSync, 0, PSyncDetail{ReplID: "repl-1"}, XSyncDetail{})
	cur, prev = r.Snapshot()
	if cur.Mode != ModePSync || cur.From != 0 {
		t.Fatalf("after Reset: cur = %+v", cur)
	}
	if prev.Mode != ModeUnset {
		t.Fatalf("after Reset: prev.Mode = %v, want unset", prev.Mode)
	}

	r.Shift(ModeXSync, 500, PSyncDetail{}, XSyncDetail{ReplID: "repl-2"})
	cur, prev = r.Snapshot()
	if prev.Mode != ModePSync {
		t.Fatalf("after Shift: prev.Mode = %v, want psync", prev.Mode)
	}
	if cur.Mode != ModeXSync || cur.From != 501 {
		t.Fatalf("after Shift: cur = %+v, want mode=xsync from=501", cur)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeUnset, "unset"},
		{ModePSync, "psync"},
		{ModeXSync, "xsync"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
