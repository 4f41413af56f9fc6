package codec

import (
	"bytes"
	"io"
	"testing"
)

func TestZstdRoundTrip(t *testing.T) {
	c := New(LevelDefault, 0)
	want := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 1000)

	var compressed bytes.Buffer
	enc, err := c.NewEncoder(&compressed)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	if _, err := enc.Write(want); err != nil {
		t.Fatalf("encoder Write failed: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder Close failed: %v", err)
	}

	if compressed.Len() >= len(want) {
		t.Errorf("expected compression to shrink highly repetitive input, got %d >= %d", compressed.Len(), len(want))
	}

	dec, err := c.NewDecoder(bytes.NewReader(compressed.Bytes()))
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	defer dec.Close()

	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("decoder read failed: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d bytes", len(got), len(want))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"fastest": LevelFastest,
		"default": LevelDefault,
		"better":  LevelBetter,
		"best":    LevelBest,
		"bogus":   LevelDefault,
	}
	for s, want := range cases {
		if got := ParseLevel(s); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestScratchPoolRoundTrip(t *testing.T) {
	b := GetScratch()
	b.WriteString("scratch")
	if b.String() != "scratch" {
		t.Fatalf("unexpected scratch buffer content: %q", b.String())
	}
	PutScratch(b)
}
