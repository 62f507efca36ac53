package distributer

import (
	"bytes"
	"testing"

	"github.com/jabolina/actorkit/pkg/actor/types"
)

func TestHeader_RoundTrip(t *testing.T) {
	want := header{destPID: 9, size: 128, tag: 3}
	got, err := decodeHeader(encodeHeader(want))
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestDecodeHeader_RejectsShortBuffer(t *testing.T) {
	if _, err := decodeHeader([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error decoding a short header")
	}
}

func TestWriteReadFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	h := header{destPID: 4, size: 5, tag: 1}
	payload := []byte("hello")
	if err := writeFrame(&buf, h, payload); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	gotH, gotPayload, err := readFrame(&buf)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if gotH != h {
		t.Fatalf("header mismatch: got %+v, want %+v", gotH, h)
	}
	if string(gotPayload) != "hello" {
		t.Fatalf("payload mismatch: got %q", gotPayload)
	}
}

func TestEncodeKey_RejectsOverlong(t *testing.T) {
	long := make([]byte, types.KeyLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := encodeKey(string(long)); err == nil {
		t.Fatal("expected an error for a key longer than KeyLength")
	}
}

func TestEncodeDecodeKey_RoundTrip(t *testing.T) {
	buf, err := encodeKey("s3cr3t")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if got := decodeKey(buf); got != "s3cr3t" {
		t.Fatalf("got %q, want %q", got, "s3cr3t")
	}
}

func TestEncodeDecodeNID_RoundTrip(t *testing.T) {
	if got := decodeNID(encodeNID(types.NID(42))); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}
