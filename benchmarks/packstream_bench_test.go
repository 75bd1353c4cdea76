package benchmarks

import (
	"bytes"
	"testing"

	"github.com/seuros/go-packstream/src/bolt/packstream"
)

func BenchmarkPackInteger(b *testing.B) {
	var buf bytes.Buffer
	p := packstream.NewPacker(&buf)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := p.PackInteger(int64(i)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPackString(b *testing.B) {
	var buf bytes.Buffer
	p := packstream.NewPacker(&buf)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := p.PackString("the quick brown fox jumps over the lazy dog"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkPackUnpackMap(b *testing.B) {
	value := map[string]interface{}{
		"id":    int64(42),
		"name":  "Mjölnir",
		"score": 3.14159,
		"tags":  []interface{}{"a", "b", "c"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		encoded, err := packstream.Pack(value)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := packstream.Unpack(encoded); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnpackStreaming(b *testing.B) {
	encoded, err := packstream.Pack([]interface{}{int64(1), int64(2), int64(3), "x", "y", "z"})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		u := packstream.NewUnpacker(bytes.NewReader(encoded))
		if _, err := u.Unpack(); err != nil {
			b.Fatal(err)
		}
	}
}
