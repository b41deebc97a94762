package symbol

import "testing"

func TestNormalize_PrefixedForms(t *testing.T) {
	cases := map[string]string{
		"sh600519":   "sh600519",
		"SZ000001":   "sz000001",
		"bj430047":   "bj430047",
		"Sh600519":   "sh600519",
		"sz0001":     "sz000001", // short digits padded under a prefix too
		" sh600519 ": "sh600519",
	}
	for in, want := range cases {
		c, ok := Normalize(in)
		if !ok || c.String() != want {
			t.Fatalf("Normalize(%q) = %q ok=%v, want %q", in, c.String(), ok, want)
		}
	}
}

func TestNormalize_BareSixDigitsDefaultsToShanghai(t *testing.T) {
	c, ok := Normalize("600519")
	if !ok || c.String() != "sh600519" {
		t.Fatalf("got %q ok=%v", c.String(), ok)
	}
	if c.Market() != "sh" || c.Number() != "600519" {
		t.Fatalf("market=%q number=%q", c.Market(), c.Number())
	}
}

func TestNormalize_ShortFormsZeroPadded(t *testing.T) {
	cases := map[string]string{
		"0001":  "sh000001",
		"30059": "sh030059",
	}
	for in, want := range cases {
		c, ok := Normalize(in)
		if !ok || c.String() != want {
			t.Fatalf("Normalize(%q) = %q ok=%v, want %q", in, c.String(), ok, want)
		}
	}
}

func TestNormalize_RejectsNonCodes(t *testing.T) {
	for _, in := range []string{"", "  ", "贵州茅台", "sh12345678", "6005190", "abc123", "hk00700", "600", "sh"} {
		if c, ok := Normalize(in); ok {
			t.Fatalf("Normalize(%q) accepted as %q, want rejection", in, c.String())
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{"sh600519", "SZ000001", "600519", "0001", "bj430047"} {
		first, ok := Normalize(in)
		if !ok {
			t.Fatalf("Normalize(%q) rejected", in)
		}
		second, ok := Normalize(first.String())
		if !ok || second != first {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, first.String(), second.String())
		}
	}
}

func TestIsValid_RoundTripsNormalizeOutput(t *testing.T) {
	for _, in := range []string{"sh600519", "sz1", "600519", "0001", "BJ430047"} {
		c, ok := Normalize(in)
		if !ok {
			continue
		}
		if !IsValid(c.String()) {
			t.Fatalf("IsValid(%q) = false after Normalize(%q)", c.String(), in)
		}
	}
	if IsValid("sh12345") || IsValid("xx600519") || IsValid("") {
		t.Fatal("IsValid accepted malformed input")
	}
	if !IsValid("SH600519") {
		t.Fatal("IsValid should be case-insensitive on the prefix")
	}
}
