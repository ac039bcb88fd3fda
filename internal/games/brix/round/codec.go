package round

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func codec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil)
	})
	return encoder, decoder, codecErr
}

// Marshal returns the zstd compressed text form of a journal. This is the
// blob stored with a finished match.
func (j *Journal) Marshal() ([]byte, error) {
	enc, _, err := codec()
	if err != nil {
		return nil, fmt.Errorf("round: zstd: %w", err)
	}
	var buf bytes.Buffer
	if _, err := j.WriteTo(&buf); err != nil {
		return nil, err
	}
	return enc.EncodeAll(buf.Bytes(), nil), nil
}

// UnmarshalJournal reverses Marshal.
func UnmarshalJournal(data []byte) (*Journal, error) {
	_, dec, err := codec()
	if err != nil {
		return nil, fmt.Errorf("round: zstd: %w", err)
	}
	text, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("round: decompress journal: %w", err)
	}
	return ReadJournal(bytes.NewReader(text))
}
