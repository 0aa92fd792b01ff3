package httpx

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
)

// DecodeBrotli decompresses a brotli-encoded payload, used only by the
// one-shot model-catalog refresh probe against upstreams that answer with
// Content-Encoding: br regardless of the client's Accept-Encoding.
func DecodeBrotli(raw []byte) ([]byte, error) {
	reader := brotli.NewReader(bytes.NewReader(raw))
	return io.ReadAll(reader)
}
