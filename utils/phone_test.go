package utils

import "testing"

func TestNormalizePhoneNumber(t *testing.T) {
	cases := []struct {
		in, region, expected string
	}{
		{"(650) 253-0000", "US", "+16502530000"},
		{"+1 650-253-0000", "US", "+16502530000"},
		{" 6502530000 ", "", "6502530000"},
		{"12", "US", "12"},
		{"not-a-number", "US", "not-a-number"},
		{"", "US", ""},
	}
	for _, tc := range cases {
		if got := NormalizePhoneNumber(tc.in, tc.region); got != tc.expected {
			t.Fatalf("NormalizePhoneNumber(%q, %q) expected %q, got %q", tc.in, tc.region, tc.expected, got)
		}
	}
}
