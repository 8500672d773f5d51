package cache

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"io"
)

// compressValue gzips a cache value and encodes it as base64 so it can be
// stored inside a JSON-encoded CacheEntry. Analysis payloads are small JSON
// documents, so the default gzip level is plenty.
func compressValue(value string) (string, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(value)); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decompressValue reverses compressValue.
func decompressValue(value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", err
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	defer zr.Close()
	plain, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
