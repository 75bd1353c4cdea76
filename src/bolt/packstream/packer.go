package packstream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"reflect"
)

// Packer writes PackStream-encoded values to a ByteSink. Every Pack*
// method emits exactly one complete value (a container header counts as
// a complete value; its children are separate Pack* calls the caller
// makes afterward). Nothing is buffered beyond what the underlying
// ByteSink buffers; call Flush to push pending bytes to the channel.
type Packer struct {
	sink   *ByteSink
	logger Logger
	obs    *observabilityInstruments
	obsCfg *ObservabilityConfig
}

// NewPacker wraps w in a ByteSink using DefaultConfig and returns a
// Packer over it.
func NewPacker(w io.Writer) *Packer {
	return NewPackerConfig(w, DefaultConfig())
}

// NewPackerConfig wraps w in a ByteSink configured by cfg.
func NewPackerConfig(w io.Writer, cfg *Config) *Packer {
	return &Packer{
		sink:   NewByteSinkConfig(w, cfg),
		logger: cfg.logger(),
		obs:    globalObservability,
		obsCfg: cfg.observability(),
	}
}

// Flush drains any bytes buffered in the underlying ByteSink.
func (p *Packer) Flush() error {
	return p.sink.Flush()
}

func (p *Packer) writeByte(b byte) error {
	return p.sink.WriteByte(b)
}

func (p *Packer) writeBytes(b []byte) error {
	_, err := p.sink.Write(b)
	return err
}

// PackNull writes the null marker.
func (p *Packer) PackNull() error {
	if err := p.writeByte(NullMarker); err != nil {
		return err
	}
	p.obs.recordPack(p.obsCfg, KindNull, 1)
	return nil
}

// PackBoolean writes the true or false marker.
func (p *Packer) PackBoolean(v bool) error {
	marker := byte(FalseMarker)
	if v {
		marker = TrueMarker
	}
	if err := p.writeByte(marker); err != nil {
		return err
	}
	p.obs.recordPack(p.obsCfg, KindBoolean, 1)
	return nil
}

// PackInteger writes v using the narrowest marker that can represent it:
// tiny, Int8, Int16, Int32, or Int64, in that preference order.
func (p *Packer) PackInteger(v int64) error {
	switch {
	case v >= TinyIntMin && v <= TinyIntMax:
		if err := p.writeByte(byte(v)); err != nil {
			return err
		}
		p.obs.recordPack(p.obsCfg, KindInteger, 1)
		return nil
	case v >= Int8Min && v <= Int8Max:
		if err := p.writeBytes([]byte{Int8Marker, byte(v)}); err != nil {
			return err
		}
		p.obs.recordPack(p.obsCfg, KindInteger, 2)
		return nil
	case v >= Int16Min && v <= Int16Max:
		buf := make([]byte, 3)
		buf[0] = Int16Marker
		binary.BigEndian.PutUint16(buf[1:], uint16(v))
		if err := p.writeBytes(buf); err != nil {
			return err
		}
		p.obs.recordPack(p.obsCfg, KindInteger, 3)
		return nil
	case v >= Int32Min && v <= Int32Max:
		buf := make([]byte, 5)
		buf[0] = Int32Marker
		binary.BigEndian.PutUint32(buf[1:], uint32(v))
		if err := p.writeBytes(buf); err != nil {
			return err
		}
		p.obs.recordPack(p.obsCfg, KindInteger, 5)
		return nil
	default:
		buf := make([]byte, 9)
		buf[0] = Int64Marker
		binary.BigEndian.PutUint64(buf[1:], uint64(v))
		if err := p.writeBytes(buf); err != nil {
			return err
		}
		p.obs.recordPack(p.obsCfg, KindInteger, 9)
		return nil
	}
}

// PackFloat writes v as a PackStream Float (IEEE 754 double, big-endian).
func (p *Packer) PackFloat(v float64) error {
	buf := make([]byte, 9)
	buf[0] = Float64Marker
	binary.BigEndian.PutUint64(buf[1:], math.Float64bits(v))
	if err := p.writeBytes(buf); err != nil {
		return err
	}
	p.obs.recordPack(p.obsCfg, KindFloat, 9)
	return nil
}

// PackBytes writes b as a PackStream Bytes value.
func (p *Packer) PackBytes(b []byte) error {
	n := len(b)
	header, err := sizedHeader(Bytes8Marker, Bytes16Marker, Bytes32Marker, n, "bytes", false)
	if err != nil {
		return err
	}
	if err := p.writeBytes(header); err != nil {
		return err
	}
	if err := p.writeBytes(b); err != nil {
		return err
	}
	p.obs.recordPack(p.obsCfg, KindBytes, len(header)+n)
	return nil
}

// PackString writes s as a PackStream String, encoding it as UTF-8.
func (p *Packer) PackString(s string) error {
	return p.PackStringBytes([]byte(s))
}

// PackStringBytes writes b directly as a PackStream String's UTF-8
// payload, without a string->[]byte->string round trip. Callers that
// already hold UTF-8 bytes (e.g. relaying an unpacked string) should
// prefer this over PackString.
func (p *Packer) PackStringBytes(b []byte) error {
	n := len(b)
	header, err := sizedHeader(String8Marker, String16Marker, String32Marker, n, "string", true)
	if err != nil {
		return err
	}
	if err := p.writeBytes(header); err != nil {
		return err
	}
	if err := p.writeBytes(b); err != nil {
		return err
	}
	p.obs.recordPack(p.obsCfg, KindString, len(header)+n)
	return nil
}

// PackListHeader writes a List header announcing n elements; the caller
// must follow with exactly n Pack* calls.
func (p *Packer) PackListHeader(n int) error {
	header, err := sizedHeader(List8Marker, List16Marker, List32Marker, n, "list", true)
	if err != nil {
		return err
	}
	if err := p.writeBytes(header); err != nil {
		return err
	}
	p.obs.recordPack(p.obsCfg, KindList, len(header))
	p.obs.recordContainerSize(p.obsCfg, KindList, n)
	return nil
}

// PackMapHeader writes a Map header announcing n key/value pairs; the
// caller must follow with exactly 2*n Pack* calls, alternating string
// keys and values.
func (p *Packer) PackMapHeader(n int) error {
	header, err := sizedHeader(Map8Marker, Map16Marker, Map32Marker, n, "map", true)
	if err != nil {
		return err
	}
	if err := p.writeBytes(header); err != nil {
		return err
	}
	p.obs.recordPack(p.obsCfg, KindMap, len(header))
	p.obs.recordContainerSize(p.obsCfg, KindMap, n)
	return nil
}

// PackStructHeader writes a Struct header announcing its signature byte
// and n fields; the caller must follow with exactly n Pack* calls.
func (p *Packer) PackStructHeader(n int, signature byte) error {
	if n < 0 || n > structLenMax {
		return &OverflowError{What: "struct field count", Size: int64(n), Limit: structLenMax}
	}
	var header []byte
	switch {
	case n < tinyLengthMax:
		header = []byte{TinyStructMarkerBase | byte(n), signature}
	case n < width8Max:
		header = []byte{Struct8Marker, byte(n), signature}
	default:
		header = make([]byte, 4)
		header[0] = Struct16Marker
		binary.BigEndian.PutUint16(header[1:3], uint16(n))
		header[3] = signature
	}
	if err := p.writeBytes(header); err != nil {
		return err
	}
	p.obs.recordPack(p.obsCfg, KindStruct, len(header))
	p.obs.recordContainerSize(p.obsCfg, KindStruct, n)
	return nil
}

// sizedHeader builds the marker(+length) prefix for a string/bytes/list/
// map value of n elements/octets, choosing tiny/8/16/32 width. allowTiny
// is false for Bytes, which has no tiny form.
func sizedHeader(m8, m16, m32 byte, n int, what string, allowTiny bool) ([]byte, error) {
	if n < 0 {
		return nil, &OverflowError{What: what, Size: int64(n), Limit: width32Max - 1}
	}
	if allowTiny && n < tinyLengthMax {
		base := tinyBaseFor(m8)
		return []byte{base | byte(n)}, nil
	}
	switch {
	case n < width8Max:
		return []byte{m8, byte(n)}, nil
	case n < width16Max:
		buf := make([]byte, 3)
		buf[0] = m16
		binary.BigEndian.PutUint16(buf[1:], uint16(n))
		return buf, nil
	case n < width32Max:
		buf := make([]byte, 5)
		buf[0] = m32
		binary.BigEndian.PutUint32(buf[1:], uint32(n))
		return buf, nil
	default:
		return nil, &OverflowError{What: what, Size: int64(n), Limit: width32Max - 1}
	}
}

func tinyBaseFor(m8 byte) byte {
	switch m8 {
	case String8Marker:
		return TinyStringMarkerBase
	case List8Marker:
		return TinyListMarkerBase
	case Map8Marker:
		return TinyMapMarkerBase
	default:
		return 0
	}
}

// Struct is the dynamic representation of a PackStream Struct for use
// with Pack. Fields are packed in order after the header.
type Struct struct {
	Signature byte
	Fields    []interface{}
}

// Pack writes v using the narrowest applicable encoding, dispatching
// dynamically on its Go type. It supports nil, bool, int, int8, int16,
// int32, int64, uint8, uint16, uint32, float32/float64, string, []byte,
// []interface{}, map[string]interface{}, and Struct, plus any other map
// type whose key kind is string (see packReflectMap); a map with a
// non-string key kind fails with InvalidKeyError. Any other type,
// including uint, uint64 and uintptr, returns an error.
func (p *Packer) Pack(v interface{}) error {
	switch val := v.(type) {
	case nil:
		return p.PackNull()
	case bool:
		return p.PackBoolean(val)
	case int:
		return p.PackInteger(int64(val))
	case int8:
		return p.PackInteger(int64(val))
	case int16:
		return p.PackInteger(int64(val))
	case int32:
		return p.PackInteger(int64(val))
	case int64:
		return p.PackInteger(val)
	case uint8:
		return p.PackInteger(int64(val))
	case uint16:
		return p.PackInteger(int64(val))
	case uint32:
		return p.PackInteger(int64(val))
	case float32:
		return p.PackFloat(float64(val))
	case float64:
		return p.PackFloat(val)
	case string:
		return p.PackString(val)
	case []byte:
		return p.PackBytes(val)
	case []interface{}:
		if err := p.PackListHeader(len(val)); err != nil {
			return err
		}
		for _, elem := range val {
			if err := p.Pack(elem); err != nil {
				return err
			}
		}
		return nil
	case map[string]interface{}:
		if err := p.PackMapHeader(len(val)); err != nil {
			return err
		}
		for k, elem := range val {
			if err := p.PackString(k); err != nil {
				return err
			}
			if err := p.Pack(elem); err != nil {
				return err
			}
		}
		return nil
	case Struct:
		if err := p.PackStructHeader(len(val.Fields), val.Signature); err != nil {
			return err
		}
		for _, field := range val.Fields {
			if err := p.Pack(field); err != nil {
				return err
			}
		}
		return nil
	default:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Map {
			return p.packReflectMap(rv)
		}
		return fmt.Errorf("packstream: Pack: unsupported type %T", v)
	}
}

// packReflectMap packs any map type whose key kind is string-like
// (string or a named string type), falling back to reflection for
// map shapes other than the map[string]interface{} fast path above
// (e.g. map[string]string, map[string]int). A map whose key kind is
// not a string fails with InvalidKeyError, per the pack contract that
// every mapping's keys must encode as strings.
//
// Go's map iteration order is randomized, so the wire order of pairs
// packed this way is not the caller's insertion order; callers that
// need a guaranteed pair order should build the map header and pack
// each key/value pair themselves via PackMapHeader/PackString/Pack.
func (p *Packer) packReflectMap(rv reflect.Value) error {
	keyKind := rv.Type().Key().Kind()
	if keyKind != reflect.String {
		return &InvalidKeyError{GotType: rv.Type().Key().String()}
	}

	keys := rv.MapKeys()
	if err := p.PackMapHeader(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := p.PackString(k.String()); err != nil {
			return err
		}
		if err := p.Pack(rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	return nil
}
