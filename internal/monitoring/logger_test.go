package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	orig := Logf
	defer func() { Logf = orig }()

	var got string
	SetLogger(func(format string, v ...any) { got = format })
	Logf("busy, retrying in %v", "10ms")
	if got != "busy, retrying in %v" {
		t.Errorf("custom logger saw %q, want the raw format string", got)
	}

	got = ""
	SetLogger(nil)
	Logf("should be dropped")
	if got != "" {
		t.Error("no-op logger must not reach the previous sink")
	}
}

func TestLogfDefault(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf must default to a usable sink")
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Logf panicked: %v", r)
		}
	}()
	Logf("default sink check: %s", "ok")
}
