package cli

import (
	"testing"
)

func TestShortCommit(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"48cae1d7a3b2c1d0e9f8a7b6c5d4e3f2a1b0c9d8", "48cae1d"},
		{"48cae1d", "48cae1d"},
		{"abc", "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := shortCommit(tt.input); got != tt.want {
			t.Errorf("shortCommit(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestVersionString(t *testing.T) {
	// Save and restore package-level vars.
	origVersion, origCommit := Version, Commit
	defer func() {
		Version, Commit = origVersion, origCommit
	}()

	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{
			name:    "release build",
			version: "v0.2.0",
			commit:  "48cae1d7a3b2c1d0e9f8a7b6c5d4e3f2a1b0c9d8",
			want:    "v0.2.0 (48cae1d)",
		},
		{
			name:    "dev build with commit",
			version: "",
			commit:  "abcdef1234567890",
			want:    "dev (abcdef1)",
		},
		{
			name:    "short commit passthrough",
			version: "v1.0.0",
			commit:  "abc1234",
			want:    "v1.0.0 (abc1234)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = tt.version
			Commit = tt.commit
			if got := versionString(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
