package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		region string
		want   string
		ok     bool
	}{
		{"national with default region", "202-555-0125", "US", "+12025550125", true},
		{"canonical form is a fixed point", "+12025550125", "US", "+12025550125", true},
		{"canonical form ignores region", "+12025550133", "MX", "+12025550133", true},
		{"already international", "+1 202-555-0133", "MX", "+12025550133", true},
		{"mexican mobile", "55 1234 5678", "MX", "+525512345678", true},
		{"surrounding whitespace", "  +1 202-555-0133 ", "US", "+12025550133", true},
		{"empty", "", "MX", "", false},
		{"whitespace only", "   ", "MX", "", false},
		{"garbage", "not a phone", "MX", "", false},
		{"too short", "12", "US", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.input, tt.region)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("Normalize(%q, %q) = %q, want %q", tt.input, tt.region, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []struct {
		raw    string
		region string
	}{
		{"202-555-0125", "US"},
		{"+1 202-555-0133", "US"},
		{"55 1234 5678", "MX"},
	}

	for _, tt := range inputs {
		first, ok := Normalize(tt.raw, tt.region)
		if !ok {
			t.Fatalf("Normalize(%q, %q) not ok", tt.raw, tt.region)
		}
		second, ok := Normalize(first, tt.region)
		if !ok || second != first {
			t.Fatalf("Normalize(%q) = (%q, %v), want fixed point %q", first, second, ok, first)
		}
	}
}
