package compression

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestRegistry(t *testing.T) {
	for _, name := range []string{"none", "lz4"} {
		if !IsAvailable(name) {
			t.Errorf("compressor %s not registered", name)
		}
		c, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("Name() = %s, want %s", c.Name(), name)
		}
	}

	if _, err := Get("zstd-bogus"); err == nil {
		t.Error("expected error for unknown compressor")
	}
}

func TestRoundTrip(t *testing.T) {
	// Repetitive data compresses, random data does not. Both must
	// survive the round trip.
	compressible := bytes.Repeat([]byte("pool reserve snapshot "), 100)
	incompressible := make([]byte, 512)
	if _, err := rand.Read(incompressible); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"small", []byte("x")},
		{"compressible", compressible},
		{"incompressible", incompressible},
	}

	for _, compressor := range []string{"none", "lz4"} {
		c, err := Get(compressor)
		if err != nil {
			t.Fatal(err)
		}

		for _, tc := range cases {
			t.Run(compressor+"/"+tc.name, func(t *testing.T) {
				compressed, err := c.Compress(tc.data)
				if err != nil {
					t.Fatalf("Compress failed: %v", err)
				}
				if len(compressed) > c.MaxCompressedSize(len(tc.data)) {
					t.Errorf("compressed size %d exceeds bound %d",
						len(compressed), c.MaxCompressedSize(len(tc.data)))
				}

				got, err := c.Decompress(compressed, len(tc.data))
				if err != nil {
					t.Fatalf("Decompress failed: %v", err)
				}
				if !bytes.Equal(got, tc.data) {
					t.Error("round trip corrupted data")
				}
			})
		}
	}
}

func TestLZ4Shrinks(t *testing.T) {
	c := &LZ4Compressor{}
	data := bytes.Repeat([]byte("1000000"), 1000)

	compressed, err := c.Compress(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(data) {
		t.Errorf("repetitive data did not shrink: %d >= %d", len(compressed), len(data))
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	c := &NoCompressor{}
	if _, err := c.Decompress([]byte("abc"), 5); err == nil {
		t.Error("expected size mismatch error")
	}
}
