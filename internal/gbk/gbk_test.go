package gbk

import "testing"

func TestDecode_GBKBytes(t *testing.T) {
	// "贵州茅台" in GBK.
	raw := []byte{0xb9, 0xf3, 0xd6, 0xdd, 0xc3, 0xa9, 0xcc, 0xa8}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != "贵州茅台" {
		t.Fatalf("got %q", got)
	}
}

func TestDecode_ASCIIPassthrough(t *testing.T) {
	got, err := Decode([]byte(`var hq_str_sh600519="";`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != `var hq_str_sh600519="";` {
		t.Fatalf("got %q", got)
	}
}
