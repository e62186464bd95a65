package hash_test

import (
	"testing"

	"github.com/hok-pm/hok/hash"
)

// RFC/well-known test vectors for the empty string and "abc".
var vectors = []struct {
	algo hash.Algo
	in   string
	want string
}{
	{hash.MD5, "", "d41d8cd98f00b204e9800998ecf8427e"},
	{hash.MD5, "abc", "900150983cd24fb0d6963f7d28e17f72"},
	{hash.SHA1, "", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
	{hash.SHA1, "abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
	{hash.SHA256, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	{hash.SHA256, "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	{hash.SHA512, "", "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"},
	{hash.SHA512, "abc", "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
}

func TestReferenceVectors(t *testing.T) {
	for _, v := range vectors {
		h, err := hash.New(v.algo, "")
		if err != nil {
			t.Fatalf("New(%s): %v", v.algo, err)
		}
		h.Consume([]byte(v.in))
		got := h.Finalize()
		if got != v.want {
			t.Errorf("%s(%q) = %s, want %s", v.algo, v.in, got, v.want)
		}
	}
}

func TestIdempotentFinalize(t *testing.T) {
	h, err := hash.New(hash.SHA256, "")
	if err != nil {
		t.Fatal(err)
	}
	h.Consume([]byte("hok"))
	a := h.Finalize()
	b := h.Finalize()
	if a != b {
		t.Fatalf("Finalize not idempotent: %s != %s", a, b)
	}
}

func TestConsumeAfterFinalizeIsNoop(t *testing.T) {
	h, err := hash.New(hash.SHA256, "")
	if err != nil {
		t.Fatal(err)
	}
	h.Consume([]byte("hok"))
	first := h.Finalize()
	h.Consume([]byte("more data that must be ignored"))
	second := h.Finalize()
	if first != second {
		t.Fatalf("consume after finalize changed result: %s != %s", first, second)
	}
}

func TestCheckCaseInsensitive(t *testing.T) {
	h, err := hash.New(hash.SHA256, "SHA256:BA7816BF8F01CFEA414140DE5DAE2223B00361A396177A9CB410FF61F20015AD")
	if err != nil {
		t.Fatal(err)
	}
	h.Consume([]byte("abc"))
	if !h.Check() {
		t.Fatalf("expected Check() to pass case-insensitively")
	}
}

func TestUnsupportedAlgorithm(t *testing.T) {
	if _, err := hash.New("crc32", ""); err == nil {
		t.Fatalf("expected error for unsupported algorithm")
	}
}

func TestResetClearsState(t *testing.T) {
	h, err := hash.New(hash.MD5, "")
	if err != nil {
		t.Fatal(err)
	}
	h.Consume([]byte("abc"))
	h.Finalize()
	h.Reset()
	h.Consume([]byte(""))
	if got := h.Finalize(); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("after reset, got %s", got)
	}
}
