package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	secretFile := filepath.Join(t.TempDir(), "secret")
	if err := os.WriteFile(secretFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("writing secret file: %v", err)
	}
	emptyFile := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(emptyFile, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("writing empty file: %v", err)
	}

	t.Setenv("SECRETS_TEST_KEY", "from-env")
	t.Setenv("SECRETS_TEST_EMPTY", "  ")

	tests := []struct {
		name    string
		src     Source
		expect  string
		wantErr bool
	}{
		{
			name:   "file wins over env and value",
			src:    Source{File: secretFile, Env: "SECRETS_TEST_KEY", Value: "inline"},
			expect: "from-file",
		},
		{
			name:    "empty file is an error",
			src:     Source{File: emptyFile, Value: "inline"},
			wantErr: true,
		},
		{
			name:    "missing file is an error",
			src:     Source{File: filepath.Join(t.TempDir(), "nope")},
			wantErr: true,
		},
		{
			name:   "env wins over value",
			src:    Source{Env: "SECRETS_TEST_KEY", Value: "inline"},
			expect: "from-env",
		},
		{
			name:   "blank env falls through to value",
			src:    Source{Env: "SECRETS_TEST_EMPTY", Value: " inline "},
			expect: "inline",
		},
		{
			name:   "inline value",
			src:    Source{Value: "inline"},
			expect: "inline",
		},
		{
			name:    "nothing configured",
			src:     Source{Name: "api key"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
