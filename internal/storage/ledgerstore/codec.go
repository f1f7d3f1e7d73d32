package ledgerstore

import (
	"fmt"

	"github.com/LeJamon/goAMMd/internal/storage/compression"
	"github.com/ugorji/go/codec"
)

// envelope wraps an encoded record with its compression parameters.
type envelope struct {
	Compression string `codec:"c"`
	RawSize     int    `codec:"n"`
	Body        []byte `codec:"b"`
}

// cborHandle returns the handle used for all stored records. Canonical
// mode keeps the encoding deterministic.
func cborHandle() *codec.CborHandle {
	handle := new(codec.CborHandle)
	handle.Canonical = true
	return handle
}

// encodeRecord CBOR-encodes v, compresses it and wraps it in an envelope.
func (s *Store) encodeRecord(v interface{}) ([]byte, error) {
	var raw []byte
	if err := codec.NewEncoderBytes(&raw, cborHandle()).Encode(v); err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}

	body, err := s.compressor.Compress(raw)
	if err != nil {
		return nil, err
	}

	env := envelope{
		Compression: s.compressor.Name(),
		RawSize:     len(raw),
		Body:        body,
	}

	var blob []byte
	if err := codec.NewEncoderBytes(&blob, cborHandle()).Encode(env); err != nil {
		return nil, fmt.Errorf("cbor encode envelope: %w", err)
	}
	return blob, nil
}

// decodeRecord unwraps an envelope, decompresses the body and decodes the
// record into v. The envelope names its own compressor, so records written
// under a different compression setting stay readable.
func (s *Store) decodeRecord(blob []byte, v interface{}) error {
	var env envelope
	if err := codec.NewDecoderBytes(blob, cborHandle()).Decode(&env); err != nil {
		return fmt.Errorf("cbor decode envelope: %w", err)
	}

	comp := s.compressor
	if env.Compression != comp.Name() {
		named, err := compression.Get(env.Compression)
		if err != nil {
			return err
		}
		comp = named
	}

	raw, err := comp.Decompress(env.Body, env.RawSize)
	if err != nil {
		return err
	}

	if err := codec.NewDecoderBytes(raw, cborHandle()).Decode(v); err != nil {
		return fmt.Errorf("cbor decode record: %w", err)
	}
	return nil
}
