package orcidid

import "testing"

func TestIsValid(t *testing.T) {
	cases := map[string]bool{
		"0000-0002-1825-0097": true,
		"0000-0002-1694-233X": true,
		"0000-0002-1694-233x": false,
		"0000000218250097":    false,
		"0000-0002-1825-009":  false,
		" 0000-0002-1825-0097": false,
		"":                    false,
	}
	for input, want := range cases {
		if got := IsValid(input); got != want {
			t.Fatalf("IsValid(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"0000000218250097":    "0000-0002-1825-0097",
		"0000-0002-18250097":  "0000-0002-1825-0097",
		"000000021694233X":    "0000-0002-1694-233X",
		"0000-0002-1825-0097": "0000-0002-1825-0097",
		"12345":               "12345",
		"1-2-3":               "1-2-3",
	}
	for input, want := range cases {
		if got := Format(input); got != want {
			t.Fatalf("Format(%q) = %q, want %q", input, got, want)
		}
	}
}
