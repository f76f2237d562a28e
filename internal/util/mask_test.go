package util

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"Juan.Perez@Gmail.com": "j…z@g…l.com",
		"ab@x.bo":              "a…@x.bo",
		"sinarroba":            "s…a",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskToken(t *testing.T) {
	if got := MaskToken(""); got != "" {
		t.Fatalf("empty: %q", got)
	}
	if got := MaskToken("corto"); got != "***" {
		t.Fatalf("short: %q", got)
	}
	if got := MaskToken("eyJhbGciOiJIUzI1NiJ9.payload.firma"); got != "eyJhbG…irma" {
		t.Fatalf("long: %q", got)
	}
}
