package mimeo

import "testing"

func TestIsValidCapability(t *testing.T) {
	tests := []struct {
		c    Capability
		want bool
	}{
		{CapabilityClone, true},
		{CapabilityFlatten, true},
		{CapabilityMutableClone, true},
		{CapabilityReadonlyClone, true},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.c), func(t *testing.T) {
			if got := IsValidCapability(tt.c); got != tt.want {
				t.Errorf("IsValidCapability(%q) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestIsValidHint(t *testing.T) {
	tests := []struct {
		h    Hint
		want bool
	}{
		{HintDefault, true},
		{HintShallow, true},
		{HintDeep, true},
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.h), func(t *testing.T) {
			if got := IsValidHint(tt.h); got != tt.want {
				t.Errorf("IsValidHint(%q) = %v, want %v", tt.h, got, tt.want)
			}
		})
	}
}

func TestIsValidCapability_CaseSensitive(t *testing.T) {
	tests := []struct {
		c    Capability
		want bool
	}{
		{"Clone", false},
		{"CLONE", false},
		{"Flatten", false},
		{"FLATTEN", false},
		{"MutableClone", false},
		{"ReadonlyClone", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.c), func(t *testing.T) {
			if got := IsValidCapability(tt.c); got != tt.want {
				t.Errorf("IsValidCapability(%q) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestIsValidHint_Whitespace(t *testing.T) {
	tests := []struct {
		h    Hint
		want bool
	}{
		{" deep", false},
		{"deep ", false},
		{" deep ", false},
		{"\tdeep", false},
		{"deep\n", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.h), func(t *testing.T) {
			if got := IsValidHint(tt.h); got != tt.want {
				t.Errorf("IsValidHint(%q) = %v, want %v", tt.h, got, tt.want)
			}
		})
	}
}
