package frame

import (
	"bytes"
	"testing"
)

func TestWriterSplitsOversizeBodyIntoChunks(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSize(&buf, 4)
	if err := w.WriteMessage([]byte{1, 2, 3, 4, 5, 6, 7}); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	want := []byte{
		0x00, 0x04, 1, 2, 3, 4,
		0x00, 0x03, 5, 6, 7,
		0x00, 0x00,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got %X, want %X", buf.Bytes(), want)
	}
}

func TestReaderReassemblesChunkedMessage(t *testing.T) {
	wire := []byte{
		0x00, 0x03, 'a', 'b', 'c',
		0x00, 0x02, 'd', 'e',
		0x00, 0x00,
	}
	r := NewReader(bytes.NewReader(wire))
	body, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if string(body) != "abcde" {
		t.Errorf("got %q, want %q", body, "abcde")
	}
}

func TestWriterThenReaderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriterSize(&buf, 3)
	payload := []byte("the quick brown fox")
	if err := w.WriteMessage(payload); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	r := NewReader(&buf)
	got, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestEmptyMessageRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteMessage(nil); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	r := NewReader(&buf)
	got, err := r.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
