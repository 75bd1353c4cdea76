package packstream

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindOfUnwraps(t *testing.T) {
	base := &MalformedMarkerError{Marker: 0xC4}
	wrapped := fmt.Errorf("decoding value: %w", base)

	kind, ok := ErrorKindOf(wrapped)
	if !ok {
		t.Fatal("ErrorKindOf: expected ok=true for wrapped codec error")
	}
	if kind != ErrKindMalformedMarker {
		t.Errorf("ErrorKindOf: got %s, want %s", kind, ErrKindMalformedMarker)
	}
}

func TestErrorKindOfNonCodecError(t *testing.T) {
	_, ok := ErrorKindOf(errors.New("not a codec error"))
	if ok {
		t.Error("ErrorKindOf: expected ok=false for a plain error")
	}
}

func TestUnexpectedEOFErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := &UnexpectedEOFError{Context: "reading value", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("UnexpectedEOFError should unwrap to its inner error")
	}
}

func TestIOErrorUnwrap(t *testing.T) {
	inner := errors.New("broken pipe")
	err := &IOError{Op: "write", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("IOError should unwrap to its inner error")
	}
}

func TestErrorKindStrings(t *testing.T) {
	cases := map[ErrorKind]string{
		ErrKindMalformedMarker: "MalformedMarker",
		ErrKindUnexpectedType:  "UnexpectedType",
		ErrKindUnexpectedEOF:   "UnexpectedEOF",
		ErrKindOverflow:        "Overflow",
		ErrKindInvalidKey:      "InvalidKey",
		ErrKindIOFailure:       "IOFailure",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
