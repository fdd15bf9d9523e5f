package version

import (
	"testing"
)

// FuzzParseVersion checks that any script_version an inventory may carry
// either fails to parse or survives a String round trip unchanged.
func FuzzParseVersion(f *testing.F) {
	for _, seed := range []string{
		"1.0.0", "v1.0.0", "1.0", "1", "0.9.7", "2.0.0",
		"1.0.0-rc1", "1.0.0+build.7", " 1.0.0 ",
		"", "v", ".", "1.", "1..2", "1.2.3.4", "a.b.c", "-1", "1.-",
	} {
		f.Add(seed)
	}

	schema := NewVersion(1, 0, 0)

	f.Fuzz(func(t *testing.T, input string) {
		v, err := ParseVersion(input)
		if err != nil {
			return
		}
		if !v.IsValid() {
			t.Fatalf("ParseVersion(%q) = %+v, not valid", input, v)
		}

		again, err := ParseVersion(v.String())
		if err != nil {
			t.Fatalf("reparse of %q (from %q): %v", v.String(), input, err)
		}
		if v.Compare(again) != 0 || v.Precision != again.Precision {
			t.Fatalf("round trip of %q: %+v != %+v", input, v, again)
		}

		if v.Compatible(schema) != (v.Major == schema.Major) {
			t.Fatalf("Compatible(%q) disagrees with major comparison", input)
		}
	})
}
