package cli

import (
	"reflect"
	"testing"
)

func TestProtectNegatives(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"no negatives", []string{"calc", "sum", "1", "2"}, []string{"calc", "sum", "1", "2"}},
		{"negative positional", []string{"calc", "sum", "-1", "2"}, []string{"calc", "sum", "--", "-1", "2"}},
		{"flags move ahead", []string{"calc", "divide", "-6", "--precision", "1", "3"}, []string{"calc", "divide", "--precision", "1", "--", "-6", "3"}},
		{"flag value untouched", []string{"calc", "divide", "6", "3", "--precision", "-1"}, []string{"calc", "divide", "6", "3", "--precision", "-1"}},
		{"equals form", []string{"calc", "divide", "-6", "--precision=1", "3"}, []string{"calc", "divide", "--precision=1", "--", "-6", "3"}},
		{"top-level flags", []string{"--config", "-x.toml", "--dry-run", "yes", "calc", "sum", "-1"}, []string{"--config", "-x.toml", "--dry-run", "yes", "calc", "sum", "--", "-1"}},
		{"help flag", []string{"calc", "sum", "-h", "-1"}, []string{"calc", "sum", "-h", "--", "-1"}},
		{"existing dash", []string{"calc", "sum", "--", "-1"}, []string{"calc", "sum", "--", "-1"}},
		{"after existing dash", []string{"calc", "sum", "-1", "--", "-2"}, []string{"calc", "sum", "--", "-1", "-2"}},
		{"no operation", []string{"calc", "-1"}, []string{"calc", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := protectNegatives(tt.args); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("protectNegatives(%q) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestIsNegativeNumber(t *testing.T) {
	tests := map[string]bool{
		"-5":   true,
		"-1.5": true,
		"-.5":  true,
		"-2e3": true,
		"-h":   false,
		"--":   false,
		"-":    false,
		"-inf": false,
		"5":    false,
		"-5x":  false,
		"--1":  false,
	}
	for in, want := range tests {
		if got := isNegativeNumber(in); got != want {
			t.Errorf("isNegativeNumber(%q) = %v, want %v", in, got, want)
		}
	}
}
