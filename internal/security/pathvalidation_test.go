package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	safeDir := filepath.Join(tmpDir, "safe")
	unsafeDir := filepath.Join(tmpDir, "unsafe")
	if err := os.MkdirAll(safeDir, 0o755); err != nil {
		t.Fatalf("create safe directory: %v", err)
	}
	if err := os.MkdirAll(unsafeDir, 0o755); err != nil {
		t.Fatalf("create unsafe directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(unsafeDir, "secret.txt"), []byte("secret"), 0o644); err != nil {
		t.Fatalf("create unsafe file: %v", err)
	}

	// A symlink planted inside the safe directory pointing out of it.
	symlinkPath := filepath.Join(safeDir, "evil-symlink")
	if err := os.Symlink(unsafeDir, symlinkPath); err != nil {
		t.Fatalf("create symlink: %v", err)
	}

	tests := []struct {
		name      string
		filePath  string
		safeDir   string
		wantError bool
	}{
		{"path within directory", filepath.Join(tmpDir, "file.csv"), tmpDir, false},
		{"nested path, not yet created", filepath.Join(tmpDir, "runs", "file.csv"), tmpDir, false},
		{"dotdot traversal", filepath.Join(tmpDir, "..", "file.csv"), tmpDir, true},
		{"relative traversal", "../../../etc/passwd", tmpDir, true},
		{"absolute path outside", "/etc/passwd", tmpDir, true},
		{"file behind symlink escape", filepath.Join(symlinkPath, "secret.txt"), safeDir, true},
		{"symlink itself", symlinkPath, safeDir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, tt.safeDir)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidatePathWithinDirectory(%q, %q) error = %v, wantError %v",
					tt.filePath, tt.safeDir, err, tt.wantError)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"run-42.csv", "run-42.csv"},
		{"a b/c", "a_b_c"},
		{"../../etc/passwd", "etc_passwd"},
		{"", "unknown"},
		{"///", "unknown"},
		{"..hidden..", "hidden"},
		{"label:2 (north)", "label_2_north"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	if got := SanitizeFilename(string(long)); len(got) != 128 {
		t.Errorf("long name sanitized to %d bytes, want 128", len(got))
	}
}
