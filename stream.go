package arcfind

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// maxStreamLayers bounds how many compression wrappers are peeled off a
// single source before giving up on finding a container inside.
const maxStreamLayers = 4

// unwrapStream decompresses stream-wrapper layers (gzip, bzip2, xz, zstd,
// lz4) until the payload classifies as something else, and returns the
// payload with its format.
func unwrapStream(data []byte) ([]byte, Format, error) {
	format := Detect(data)
	for layer := 0; format.IsStream(); layer++ {
		if layer >= maxStreamLayers {
			return nil, FormatUnknown, fmt.Errorf("more than %d nested compression layers", maxStreamLayers)
		}
		payload, err := decodeStream(format, data)
		if err != nil {
			return nil, FormatUnknown, fmt.Errorf("decode %s stream: %w", format, err)
		}
		data, format = payload, Detect(payload)
	}
	return data, format, nil
}

func decodeStream(format Format, data []byte) ([]byte, error) {
	switch format {
	case FormatGzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close() //nolint:errcheck
		return io.ReadAll(zr)
	case FormatBzip2:
		zr, err := bzip2.NewReader(bytes.NewReader(data), nil)
		if err != nil {
			return nil, err
		}
		defer zr.Close() //nolint:errcheck
		return io.ReadAll(zr)
	case FormatXz:
		zr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return io.ReadAll(zr)
	case FormatZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case FormatLz4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("format %s is not a compression stream", format)
	}
}
