package packstream

import (
	"encoding/binary"
	"io"
	"math"
)

// Unpacker reads PackStream-encoded values from a ByteSource. Every
// Unpack* method first peeks the next marker and fails with
// UnexpectedTypeError, without consuming anything, if the wire value's
// kind doesn't match what was asked for.
//
// A Struct header and its signature byte are read as two separate
// calls, UnpackStructHeader then UnpackStructSignature; any other
// method invoked in between fails with UnexpectedTypeError, since the
// stream position sits between two halves of one logical value.
type Unpacker struct {
	src    *ByteSource
	logger Logger
	obs    *observabilityInstruments
	obsCfg *ObservabilityConfig

	awaitingSignature bool
}

// NewUnpacker wraps r in a ByteSource using DefaultConfig and returns an
// Unpacker over it.
func NewUnpacker(r io.Reader) *Unpacker {
	return NewUnpackerConfig(r, DefaultConfig())
}

// NewUnpackerConfig wraps r in a ByteSource configured by cfg.
func NewUnpackerConfig(r io.Reader, cfg *Config) *Unpacker {
	return &Unpacker{
		src:    NewByteSourceConfig(r, cfg),
		logger: cfg.logger(),
		obs:    globalObservability,
		obsCfg: cfg.observability(),
	}
}

// Reset rebinds the unpacker to a new channel, discarding any
// in-progress struct header/signature state along with buffered bytes.
func (u *Unpacker) Reset(r io.Reader) {
	u.src.Reset(r)
	u.awaitingSignature = false
}

// HasNext reports whether another value is available to unpack.
func (u *Unpacker) HasNext() bool {
	return u.src.HasNext()
}

func (u *Unpacker) requireNotAwaitingSignature(op string) error {
	if u.awaitingSignature {
		return &UnexpectedTypeError{Op: op, Want: KindStruct, Got: KindStruct}
	}
	return nil
}

// PeekNextType classifies the next value on the stream without
// consuming it.
func (u *Unpacker) PeekNextType() (Kind, error) {
	if err := u.requireNotAwaitingSignature("PeekNextType"); err != nil {
		return 0, err
	}
	marker, err := u.src.PeekByte()
	if err != nil {
		return 0, err
	}
	kind, err := classifyMarker(marker)
	if err != nil {
		u.obs.recordDecodeError(u.obsCfg, ErrKindMalformedMarker)
		return 0, err
	}
	return kind, nil
}

// expectKind peeks the next marker, verifies it classifies as want, and
// only then consumes it. On mismatch the stream is left untouched.
func (u *Unpacker) expectKind(op string, want Kind) (byte, error) {
	if err := u.requireNotAwaitingSignature(op); err != nil {
		return 0, err
	}
	marker, err := u.src.PeekByte()
	if err != nil {
		return 0, err
	}
	kind, err := classifyMarker(marker)
	if err != nil {
		u.obs.recordDecodeError(u.obsCfg, ErrKindMalformedMarker)
		return 0, err
	}
	if kind != want {
		u.obs.recordDecodeError(u.obsCfg, ErrKindUnexpectedType)
		return 0, &UnexpectedTypeError{Op: op, Want: want, Got: kind}
	}
	if _, err := u.src.ReadByte(); err != nil {
		return 0, err
	}
	return marker, nil
}

// UnpackNull consumes a Null value.
func (u *Unpacker) UnpackNull() error {
	_, err := u.expectKind("UnpackNull", KindNull)
	if err != nil {
		return err
	}
	u.obs.recordUnpack(u.obsCfg, KindNull, 1)
	return nil
}

// UnpackBoolean consumes and returns a Boolean value.
func (u *Unpacker) UnpackBoolean() (bool, error) {
	marker, err := u.expectKind("UnpackBoolean", KindBoolean)
	if err != nil {
		return false, err
	}
	u.obs.recordUnpack(u.obsCfg, KindBoolean, 1)
	return marker == TrueMarker, nil
}

// UnpackLong consumes an Integer value of any width and returns it
// widened to int64.
func (u *Unpacker) UnpackLong() (int64, error) {
	marker, err := u.expectKind("UnpackLong", KindInteger)
	if err != nil {
		return 0, err
	}

	switch {
	case marker <= TinyIntPositiveMax:
		u.obs.recordUnpack(u.obsCfg, KindInteger, 1)
		return int64(marker), nil
	case marker >= TinyIntNegativeMin:
		u.obs.recordUnpack(u.obsCfg, KindInteger, 1)
		return int64(marker) - 256, nil
	case marker == Int8Marker:
		b, err := u.src.readExact(1)
		if err != nil {
			return 0, err
		}
		u.obs.recordUnpack(u.obsCfg, KindInteger, 2)
		return int64(int8(b[0])), nil
	case marker == Int16Marker:
		b, err := u.src.readExact(2)
		if err != nil {
			return 0, err
		}
		u.obs.recordUnpack(u.obsCfg, KindInteger, 3)
		return int64(int16(binary.BigEndian.Uint16(b))), nil
	case marker == Int32Marker:
		b, err := u.src.readExact(4)
		if err != nil {
			return 0, err
		}
		u.obs.recordUnpack(u.obsCfg, KindInteger, 5)
		return int64(int32(binary.BigEndian.Uint32(b))), nil
	default: // Int64Marker
		b, err := u.src.readExact(8)
		if err != nil {
			return 0, err
		}
		u.obs.recordUnpack(u.obsCfg, KindInteger, 9)
		return int64(binary.BigEndian.Uint64(b)), nil
	}
}

// UnpackDouble consumes a Float value.
func (u *Unpacker) UnpackDouble() (float64, error) {
	if _, err := u.expectKind("UnpackDouble", KindFloat); err != nil {
		return 0, err
	}
	b, err := u.src.readExact(8)
	if err != nil {
		return 0, err
	}
	u.obs.recordUnpack(u.obsCfg, KindFloat, 9)
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// sizedLength reads the length that follows a sized (non-tiny) marker:
// one byte for an *_8 marker, two for *_16, four for *_32.
func (u *Unpacker) sizedLength(marker, m8, m16 byte) (int, error) {
	switch marker {
	case m8:
		b, err := u.src.readExact(1)
		if err != nil {
			return 0, err
		}
		return int(b[0]), nil
	case m16:
		v, err := u.src.readUint(2)
		if err != nil {
			return 0, err
		}
		return int(v), nil
	default:
		v, err := u.src.readUint(4)
		if err != nil {
			return 0, err
		}
		return int(v), nil
	}
}

// UnpackBytes consumes a Bytes value.
func (u *Unpacker) UnpackBytes() ([]byte, error) {
	marker, err := u.expectKind("UnpackBytes", KindBytes)
	if err != nil {
		return nil, err
	}
	n, err := u.sizedLength(marker, Bytes8Marker, Bytes16Marker)
	if err != nil {
		return nil, err
	}
	b, err := u.src.readExact(n)
	if err != nil {
		return nil, err
	}
	u.obs.recordUnpack(u.obsCfg, KindBytes, n)
	return b, nil
}

// UnpackString consumes a String value, decoded as UTF-8.
func (u *Unpacker) UnpackString() (string, error) {
	marker, err := u.expectKind("UnpackString", KindString)
	if err != nil {
		return "", err
	}

	var n int
	if marker&markerHighNibbleMask == TinyStringMarkerBase {
		n = int(marker & markerLowNibbleMask)
	} else {
		n, err = u.sizedLength(marker, String8Marker, String16Marker)
		if err != nil {
			return "", err
		}
	}

	b, err := u.src.readExact(n)
	if err != nil {
		return "", err
	}
	u.obs.recordUnpack(u.obsCfg, KindString, n)
	return string(b), nil
}

// UnpackListHeader consumes a List header and returns its element count;
// the caller must follow with exactly that many Unpack* calls.
func (u *Unpacker) UnpackListHeader() (int, error) {
	marker, err := u.expectKind("UnpackListHeader", KindList)
	if err != nil {
		return 0, err
	}
	var n int
	if marker&markerHighNibbleMask == TinyListMarkerBase {
		n = int(marker & markerLowNibbleMask)
	} else {
		n, err = u.sizedLength(marker, List8Marker, List16Marker)
		if err != nil {
			return 0, err
		}
	}
	u.obs.recordUnpack(u.obsCfg, KindList, 0)
	u.obs.recordContainerSize(u.obsCfg, KindList, n)
	return n, nil
}

// UnpackMapHeader consumes a Map header and returns its pair count; the
// caller must follow with exactly 2*n Unpack* calls, alternating string
// keys and values.
func (u *Unpacker) UnpackMapHeader() (int, error) {
	marker, err := u.expectKind("UnpackMapHeader", KindMap)
	if err != nil {
		return 0, err
	}
	var n int
	if marker&markerHighNibbleMask == TinyMapMarkerBase {
		n = int(marker & markerLowNibbleMask)
	} else {
		n, err = u.sizedLength(marker, Map8Marker, Map16Marker)
		if err != nil {
			return 0, err
		}
	}
	u.obs.recordUnpack(u.obsCfg, KindMap, 0)
	u.obs.recordContainerSize(u.obsCfg, KindMap, n)
	return n, nil
}

// UnpackStructHeader consumes a Struct marker and size, leaving the
// signature byte unread. The caller must call UnpackStructSignature
// next; any other Unpacker method fails with UnexpectedTypeError until
// then.
func (u *Unpacker) UnpackStructHeader() (int, error) {
	marker, err := u.expectKind("UnpackStructHeader", KindStruct)
	if err != nil {
		return 0, err
	}
	var n int
	switch {
	case marker&markerHighNibbleMask == TinyStructMarkerBase:
		n = int(marker & markerLowNibbleMask)
	case marker == Struct8Marker:
		b, err := u.src.readExact(1)
		if err != nil {
			return 0, err
		}
		n = int(b[0])
	default: // Struct16Marker
		v, err := u.src.readUint(2)
		if err != nil {
			return 0, err
		}
		n = int(v)
	}
	u.awaitingSignature = true
	u.obs.recordUnpack(u.obsCfg, KindStruct, 0)
	u.obs.recordContainerSize(u.obsCfg, KindStruct, n)
	return n, nil
}

// UnpackStructSignature consumes the signature byte following a Struct
// header. It is an error to call this without a preceding
// UnpackStructHeader.
func (u *Unpacker) UnpackStructSignature() (byte, error) {
	if !u.awaitingSignature {
		return 0, &UnexpectedTypeError{Op: "UnpackStructSignature", Want: KindStruct, Got: KindStruct}
	}
	b, err := u.src.ReadByte()
	if err != nil {
		return 0, err
	}
	u.awaitingSignature = false
	return b, nil
}

// Unpack reads the next value and materializes it dynamically: nil,
// bool, int64, float64, []byte, string, []interface{}, map[string]interface{},
// or Struct, recursing into containers.
func (u *Unpacker) Unpack() (interface{}, error) {
	kind, err := u.PeekNextType()
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindNull:
		return nil, u.UnpackNull()
	case KindBoolean:
		return u.UnpackBoolean()
	case KindInteger:
		return u.UnpackLong()
	case KindFloat:
		return u.UnpackDouble()
	case KindBytes:
		return u.UnpackBytes()
	case KindString:
		return u.UnpackString()
	case KindList:
		n, err := u.UnpackListHeader()
		if err != nil {
			return nil, err
		}
		out := make([]interface{}, n)
		for i := 0; i < n; i++ {
			out[i], err = u.Unpack()
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	case KindMap:
		n, err := u.UnpackMapHeader()
		if err != nil {
			return nil, err
		}
		out := make(map[string]interface{}, n)
		for i := 0; i < n; i++ {
			key, err := u.UnpackString()
			if err != nil {
				return nil, err
			}
			val, err := u.Unpack()
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil
	case KindStruct:
		n, err := u.UnpackStructHeader()
		if err != nil {
			return nil, err
		}
		sig, err := u.UnpackStructSignature()
		if err != nil {
			return nil, err
		}
		fields := make([]interface{}, n)
		for i := 0; i < n; i++ {
			fields[i], err = u.Unpack()
			if err != nil {
				return nil, err
			}
		}
		return Struct{Signature: sig, Fields: fields}, nil
	default:
		return nil, &UnexpectedTypeError{Op: "Unpack", Want: kind, Got: kind}
	}
}
