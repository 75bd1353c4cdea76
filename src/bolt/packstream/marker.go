package packstream

// Marker bytes and size-class limits for the PackStream wire format.
//
// The full table partitions 0x00-0xFF into fixed ranges: tiny literals and
// tiny-length containers are single-byte markers, everything else is a
// marker followed by an explicit big-endian size and/or payload. See
// section 4.1 of the format description for the authoritative layout; the
// constants below are named after it one for one.
const (
	TinyIntPositiveMax = 0x7F // 0x00..0x7F: tiny positive integer, value = marker
	TinyIntNegativeMin = 0xF0 // 0xF0..0xFF: tiny negative integer, value = marker-256

	TinyStringMarkerBase = 0x80
	TinyListMarkerBase   = 0x90
	TinyMapMarkerBase    = 0xA0
	TinyStructMarkerBase = 0xB0

	NullMarker  = 0xC0
	Float64Marker = 0xC1
	FalseMarker = 0xC2
	TrueMarker  = 0xC3

	Int8Marker  = 0xC8
	Int16Marker = 0xC9
	Int32Marker = 0xCA
	Int64Marker = 0xCB

	Bytes8Marker  = 0xCC
	Bytes16Marker = 0xCD
	Bytes32Marker = 0xCE

	String8Marker  = 0xD0
	String16Marker = 0xD1
	String32Marker = 0xD2

	List8Marker  = 0xD4
	List16Marker = 0xD5
	List32Marker = 0xD6

	Map8Marker  = 0xD8
	Map16Marker = 0xD9
	Map32Marker = 0xDA

	Struct8Marker  = 0xDC
	Struct16Marker = 0xDD

	markerHighNibbleMask = 0xF0
	markerLowNibbleMask  = 0x0F
)

// Size-class thresholds used by both the packer (choosing the narrowest
// encoding) and the unpacker (documentation only; the wire marker already
// tells it which width was chosen).
const (
	TinyIntMin = -16
	TinyIntMax = 127

	Int8Min = -128
	Int8Max = 127

	Int16Min = -32768
	Int16Max = 32767

	Int32Min = -2147483648
	Int32Max = 2147483647

	tinyLengthMax = 16         // tiny string/list/map/struct: length < 16
	width8Max     = 1 << 8     // *_8 markers: length < 256
	width16Max    = 1 << 16    // *_16 markers: length < 65536
	width32Max    = 1 << 31    // *_32 markers: length < 2^31 (signed max)
	structLenMax  = 1<<16 - 1  // struct8/16 cover 0..65535 fields; no struct32
)

// Kind classifies a PackStream value without revealing its size class.
// It is what PeekNextType returns.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindBytes
	KindString
	KindList
	KindMap
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBoolean:
		return "BOOLEAN"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindBytes:
		return "BYTES"
	case KindString:
		return "STRING"
	case KindList:
		return "LIST"
	case KindMap:
		return "MAP"
	case KindStruct:
		return "STRUCT"
	default:
		return "UNKNOWN"
	}
}

// classifyMarker maps a single marker byte to its Kind without consuming
// anything past it. Markers in the unassigned ranges fail with
// MalformedMarkerError.
func classifyMarker(marker byte) (Kind, error) {
	if marker <= TinyIntPositiveMax {
		return KindInteger, nil
	}
	if marker >= TinyIntNegativeMin {
		return KindInteger, nil
	}

	switch marker & markerHighNibbleMask {
	case TinyStringMarkerBase:
		return KindString, nil
	case TinyListMarkerBase:
		return KindList, nil
	case TinyMapMarkerBase:
		return KindMap, nil
	case TinyStructMarkerBase:
		return KindStruct, nil
	}

	switch marker {
	case NullMarker:
		return KindNull, nil
	case FalseMarker, TrueMarker:
		return KindBoolean, nil
	case Float64Marker:
		return KindFloat, nil
	case Int8Marker, Int16Marker, Int32Marker, Int64Marker:
		return KindInteger, nil
	case Bytes8Marker, Bytes16Marker, Bytes32Marker:
		return KindBytes, nil
	case String8Marker, String16Marker, String32Marker:
		return KindString, nil
	case List8Marker, List16Marker, List32Marker:
		return KindList, nil
	case Map8Marker, Map16Marker, Map32Marker:
		return KindMap, nil
	case Struct8Marker, Struct16Marker:
		return KindStruct, nil
	}

	return 0, &MalformedMarkerError{Marker: marker}
}
