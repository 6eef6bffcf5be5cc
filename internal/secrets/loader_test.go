package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadInline(t *testing.T) {
	got, err := Load(Source{Name: "bot token", Value: "  123:abc \n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "123:abc" {
		t.Fatalf("unexpected secret %q", got)
	}
}

func TestLoadFilePrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(Source{Name: "bot token", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file to win, got %q", got)
	}
}

func TestLoadErrors(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(empty, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "missing", src: Source{Name: "api key"}, expect: "api key is not configured"},
		{name: "hint", src: Source{Name: "api key", Hint: "set AI_API_KEY"}, expect: "(set AI_API_KEY)"},
		{name: "empty file", src: Source{File: empty}, expect: "secret file"},
		{name: "absent file", src: Source{Name: "token", File: filepath.Join(t.TempDir(), "nope")}, expect: "reading token from file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.expect) {
				t.Fatalf("expected error containing %q, got %v", tt.expect, err)
			}
		})
	}
}
