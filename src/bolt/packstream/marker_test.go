package packstream

import "testing"

func TestClassifyMarkerTinyRanges(t *testing.T) {
	cases := []struct {
		marker byte
		want   Kind
	}{
		{0x00, KindInteger},
		{0x7F, KindInteger},
		{0xF0, KindInteger},
		{0xFF, KindInteger},
		{0x80, KindString},
		{0x8F, KindString},
		{0x90, KindList},
		{0x9F, KindList},
		{0xA0, KindMap},
		{0xAF, KindMap},
		{0xB0, KindStruct},
		{0xBF, KindStruct},
	}
	for _, c := range cases {
		got, err := classifyMarker(c.marker)
		if err != nil {
			t.Fatalf("classifyMarker(0x%02X): unexpected error %v", c.marker, err)
		}
		if got != c.want {
			t.Errorf("classifyMarker(0x%02X) = %s, want %s", c.marker, got, c.want)
		}
	}
}

func TestClassifyMarkerFixedMarkers(t *testing.T) {
	cases := []struct {
		marker byte
		want   Kind
	}{
		{NullMarker, KindNull},
		{FalseMarker, KindBoolean},
		{TrueMarker, KindBoolean},
		{Float64Marker, KindFloat},
		{Int8Marker, KindInteger},
		{Int16Marker, KindInteger},
		{Int32Marker, KindInteger},
		{Int64Marker, KindInteger},
		{Bytes8Marker, KindBytes},
		{Bytes16Marker, KindBytes},
		{Bytes32Marker, KindBytes},
		{String8Marker, KindString},
		{String16Marker, KindString},
		{String32Marker, KindString},
		{List8Marker, KindList},
		{List16Marker, KindList},
		{List32Marker, KindList},
		{Map8Marker, KindMap},
		{Map16Marker, KindMap},
		{Map32Marker, KindMap},
		{Struct8Marker, KindStruct},
		{Struct16Marker, KindStruct},
	}
	for _, c := range cases {
		got, err := classifyMarker(c.marker)
		if err != nil {
			t.Fatalf("classifyMarker(0x%02X): unexpected error %v", c.marker, err)
		}
		if got != c.want {
			t.Errorf("classifyMarker(0x%02X) = %s, want %s", c.marker, got, c.want)
		}
	}
}

func TestClassifyMarkerUnassignedRanges(t *testing.T) {
	unassigned := []byte{0xC4, 0xC5, 0xC6, 0xC7, 0xCF, 0xD3, 0xD7, 0xDB, 0xDE, 0xE0, 0xEF}
	for _, m := range unassigned {
		_, err := classifyMarker(m)
		if err == nil {
			t.Fatalf("classifyMarker(0x%02X): expected MalformedMarkerError, got nil", m)
		}
		var mme *MalformedMarkerError
		if kind, ok := ErrorKindOf(err); !ok || kind != ErrKindMalformedMarker {
			t.Errorf("classifyMarker(0x%02X): expected ErrKindMalformedMarker, got %v (%T)", m, err, mme)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindInteger.String() != "INTEGER" {
		t.Errorf("KindInteger.String() = %q, want INTEGER", KindInteger.String())
	}
	if Kind(99).String() != "UNKNOWN" {
		t.Errorf("Kind(99).String() = %q, want UNKNOWN", Kind(99).String())
	}
}
