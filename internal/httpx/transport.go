// Package httpx provides the upstream HTTP transport: a gzip-fixup round
// tripper for upstreams that omit Content-Encoding on compressed bodies,
// and a proxy-aware client builder with the connect/total timeout budget.
package httpx

import (
	"bytes"
	"compress/gzip"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	kgzip "github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
)

// ConnectTimeout bounds TCP+TLS handshake time for upstream dials.
const ConnectTimeout = 30 * time.Second

// TotalTimeout bounds the full request/response lifecycle for a single
// dispatcher attempt, including a streamed response's time-to-first-byte.
const TotalTimeout = 180 * time.Second

// GzipFixupTransport wraps an http.RoundTripper to auto-decode gzip
// responses that omit the Content-Encoding header, a known quirk of some
// OpenAI-compatible upstreams sitting behind their own proxies.
type GzipFixupTransport struct {
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *GzipFixupTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil || resp == nil {
		return resp, err
	}

	if resp.Uncompressed || resp.Header.Get("Content-Encoding") != "" {
		return resp, nil
	}

	if isStreamingResponse(resp) {
		resp.Body = &gzipDetectingReader{inner: resp.Body, streaming: true}
		return resp, nil
	}

	resp.Body = &gzipDetectingReader{inner: resp.Body}
	return resp, nil
}

func isStreamingResponse(resp *http.Response) bool {
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/event-stream") {
		return true
	}
	return strings.Contains(strings.ToLower(resp.Header.Get("Transfer-Encoding")), "chunked")
}

// gzipDetectingReader peeks the first two bytes of a response body and
// transparently switches to gzip decompression if it finds the magic
// header. Used for both buffered and streaming bodies; streaming mode only
// changes the log message, not the detection logic, since the peek itself
// never blocks beyond the first chunk.
type gzipDetectingReader struct {
	inner     io.ReadCloser
	reader    io.Reader
	once      bool
	streaming bool
}

func (g *gzipDetectingReader) Read(p []byte) (int, error) {
	if !g.once {
		g.once = true

		buf := make([]byte, 2)
		n, err := io.ReadFull(g.inner, buf)
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			g.reader = io.MultiReader(bytes.NewReader(buf[:n]), g.inner)
			return g.reader.Read(p)
		}

		if n >= 2 && buf[0] == 0x1f && buf[1] == 0x8b {
			multiReader := io.MultiReader(bytes.NewReader(buf[:n]), g.inner)
			gzipReader, gzErr := gzip.NewReader(multiReader)
			if gzErr != nil {
				log.Warnf("httpx: gzip header detected but reader creation failed: %v", gzErr)
				g.reader = multiReader
			} else {
				g.reader = gzipReader
				if g.streaming {
					log.Debug("httpx: streaming gzip decompression enabled")
				}
			}
		} else {
			g.reader = io.MultiReader(bytes.NewReader(buf[:n]), g.inner)
		}
	}
	return g.reader.Read(p)
}

func (g *gzipDetectingReader) Close() error {
	if closer, ok := g.reader.(io.Closer); ok {
		_ = closer.Close()
	}
	return g.inner.Close()
}

// DecodePossibleGzip transparently decompresses raw bytes that carry the
// gzip magic header, used by the one-shot model-catalog refresh client
// rather than the streaming transport above. It uses klauspost/compress's
// gzip reader rather than the standard library's, matching the decoder the
// rest of the pack reaches for on one-shot buffered payloads.
func DecodePossibleGzip(raw []byte) ([]byte, error) {
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		reader, err := kgzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		decompressed, err := io.ReadAll(reader)
		_ = reader.Close()
		if err != nil {
			return nil, err
		}
		return decompressed, nil
	}
	return raw, nil
}

// NewUpstreamClient builds the http.Client used for all dispatcher
// attempts: gzip-fixup transport, DisableCompression so the fixup owns
// decompression instead of racing with Go's transparent gzip handling, and
// the connect/total timeout budget.
func NewUpstreamClient() *http.Client {
	dialer := &net.Dialer{Timeout: ConnectTimeout}
	base := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		DisableCompression:  true,
		TLSHandshakeTimeout: ConnectTimeout,
	}
	return &http.Client{
		Transport: &GzipFixupTransport{Base: base},
		Timeout:   TotalTimeout,
	}
}
