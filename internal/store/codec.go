package store

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// codec compresses blob payloads at rest.
type codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec() (*codec, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{encoder: encoder, decoder: decoder}, nil
}

func (c *codec) compress(val []byte) []byte {
	return c.encoder.EncodeAll(val, make([]byte, 0, len(val)/2))
}

func (c *codec) decompress(val []byte) ([]byte, error) {
	return c.decoder.DecodeAll(val, nil)
}

func (c *codec) close() {
	c.encoder.Close()
	c.decoder.Close()
}
