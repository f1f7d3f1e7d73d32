package compression

import (
	"fmt"

	"github.com/pierrec/lz4"
)

// LZ4Compressor implements LZ4 block compression.
type LZ4Compressor struct{}

// Name returns the name of the compressor.
func (c *LZ4Compressor) Name() string {
	return "lz4"
}

// Compress compresses data using LZ4 block format.
//
// LZ4 cannot shrink incompressible input. When CompressBlock reports
// zero (incompressible), the raw bytes are returned instead; the caller
// detects this case because the output length equals the recorded raw
// size, and Decompress handles it.
func (c *LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}
	if n == 0 || n >= len(data) {
		raw := make([]byte, len(data))
		copy(raw, data)
		return raw, nil
	}

	return compressed[:n], nil
}

// Decompress decompresses an LZ4 block into exactly rawSize bytes.
func (c *LZ4Compressor) Decompress(data []byte, rawSize int) ([]byte, error) {
	if rawSize == 0 {
		return []byte{}, nil
	}
	if len(data) == rawSize {
		// Stored raw because the input was incompressible.
		result := make([]byte, len(data))
		copy(result, data)
		return result, nil
	}

	decompressed := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data, decompressed)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}
	if n != rawSize {
		return nil, fmt.Errorf("lz4 decompression size mismatch: got %d bytes, want %d", n, rawSize)
	}

	return decompressed[:n], nil
}

// MaxCompressedSize returns the LZ4 worst-case output size for rawSize bytes.
func (c *LZ4Compressor) MaxCompressedSize(rawSize int) int {
	return lz4.CompressBlockBound(rawSize)
}
