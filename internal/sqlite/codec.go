package sqlite

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

const (
	codecRaw = 0
	codecLZ4 = 1

	// Values at least this large are stored lz4-framed.
	compressThreshold = 1024
)

func encodeValue(value []byte) ([]byte, int, error) {
	if len(value) < compressThreshold {
		return value, codecRaw, nil
	}

	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(value); err != nil {
		return nil, 0, fmt.Errorf("failed to compress value: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, 0, fmt.Errorf("failed to compress value: %w", err)
	}
	if buf.Len() >= len(value) {
		return value, codecRaw, nil
	}
	return buf.Bytes(), codecLZ4, nil
}

func decodeValue(stored []byte, codec int) ([]byte, error) {
	switch codec {
	case codecRaw:
		return stored, nil
	case codecLZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(stored)))
		if err != nil {
			return nil, fmt.Errorf("failed to decompress value: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown value codec %d", codec)
	}
}
