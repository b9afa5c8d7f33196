package debversion

import "testing"

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"1.2", "1:2.3-4", "1.2.ananas", "0:1.2", "1.2-1~1"} {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if v.String() != s {
			t.Errorf("String() = %q, want %q", v.String(), s)
		}
	}
}

func TestCanonicalEquality(t *testing.T) {
	cases := []struct{ a, b string }{
		{"1.2", "1.2-0"},
		{"1.2", "0:1.2"},
		{"1.0", "1.00"},
	}
	for _, c := range cases {
		va, err := Parse(c.a)
		if err != nil {
			t.Fatal(err)
		}
		vb, err := Parse(c.b)
		if err != nil {
			t.Fatal(err)
		}
		if !Equal(va, vb) {
			t.Errorf("expected %q == %q", c.a, c.b)
		}
		if va.CanonicalKey() != vb.CanonicalKey() {
			t.Errorf("expected CanonicalKey(%q) == CanonicalKey(%q), got %q vs %q",
				c.a, c.b, va.CanonicalKey(), vb.CanonicalKey())
		}
	}
}

func TestOrderingSpotChecks(t *testing.T) {
	less := [][2]string{
		{"1.2", "1.10"},
		{"1.2~1", "1.2"},
		{"1.2~1", "1.2-1"},
		{"1.2.ananas", "1.2.apple"},
		{"1.2", "1.2.1"},
		{"1.2-1~1", "1.2-1a"},
	}
	for _, pair := range less {
		va, err := Parse(pair[0])
		if err != nil {
			t.Fatal(err)
		}
		vb, err := Parse(pair[1])
		if err != nil {
			t.Fatal(err)
		}
		if Compare(va, vb) != -1 {
			t.Errorf("expected %q < %q", pair[0], pair[1])
		}
		if Compare(vb, va) != 1 {
			t.Errorf("expected %q > %q", pair[1], pair[0])
		}
	}

	equal := [][2]string{
		{"1.2", "1.2-0"},
		{"1.2", "0:1.2"},
	}
	for _, pair := range equal {
		va, _ := Parse(pair[0])
		vb, _ := Parse(pair[1])
		if Compare(va, vb) != 0 {
			t.Errorf("expected %q == %q", pair[0], pair[1])
		}
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"-1",
		"a1.2",
		":1.2",
		"1.2-",
		"1.2_3",
	}
	for _, s := range bad {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", s)
		}
	}
}

func TestNonASCIIRejected(t *testing.T) {
	if _, err := Parse("1.2é"); err == nil {
		t.Error("expected error for non-ASCII input")
	}
}
