// Package dispatcher forwards authenticated client requests to the upstream
// gateway, rotating bearer credentials from a key pool and retrying attempts
// that the quota classifier flags as exhausted.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/routekeeper/gatewayproxy/internal/httpx"
	"github.com/routekeeper/gatewayproxy/internal/keypool"
	"github.com/routekeeper/gatewayproxy/internal/logging"
	"github.com/routekeeper/gatewayproxy/internal/normalizer"
	"github.com/routekeeper/gatewayproxy/internal/quota"
	"github.com/routekeeper/gatewayproxy/internal/registry"
)

const maxAttemptCeiling = 5

// forwardedHeaders are copied from the client request onto the upstream
// request when present; everything else is rebuilt from scratch.
var forwardedHeaders = []string{"Content-Type", "Accept", "User-Agent", "X-Request-ID"}

// Dispatcher proxies any request not matched by a local route to the
// upstream gateway, attempting up to min(pool size, 5) distinct credentials.
type Dispatcher struct {
	Pool                   *keypool.Pool
	Registry               *registry.Registry
	UpstreamHost           string
	EnableParamsConversion bool
	Client                 *http.Client
}

// New builds a Dispatcher wired to the given pool, registry, and upstream
// host. The upstream client is a gzip-fixup-wrapped client built by
// httpx.NewUpstreamClient for this Dispatcher.
func New(pool *keypool.Pool, reg *registry.Registry, upstreamHost string, enableParamsConversion bool) *Dispatcher {
	return &Dispatcher{
		Pool:                   pool,
		Registry:               reg,
		UpstreamHost:           upstreamHost,
		EnableParamsConversion: enableParamsConversion,
		Client:                 httpx.NewUpstreamClient(),
	}
}

// Handle is the gin handler for the catch-all proxy route.
func (d *Dispatcher) Handle(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request_error", "failed to read request body")
		return
	}

	body := rawBody
	if d.EnableParamsConversion && len(rawBody) > 0 {
		if normalized, _, nerr := normalizer.Normalize(rawBody, d.Registry); nerr == nil {
			body = normalized
		} else {
			log.Warnf("dispatcher: normalize failed, forwarding raw body: %v", nerr)
		}
	}
	isStream := detectStream(body)

	maxAttempts := d.Pool.Len()
	if maxAttempts == 0 {
		maxAttempts = 1
	}
	if maxAttempts > maxAttemptCeiling {
		maxAttempts = maxAttemptCeiling
	}

	lastKind := "all_keys_exhausted"
	lastStatus := http.StatusServiceUnavailable
	for attempt := 0; attempt < maxAttempts; attempt++ {
		credential, ok := d.Pool.Select()
		if !ok {
			writeError(c, http.StatusInternalServerError, "configuration_error", "no credentials configured")
			return
		}

		upstreamReq, err := d.buildUpstreamRequest(c, credential, body)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "configuration_error", "failed to build upstream request")
			return
		}

		if isStream {
			if d.relayStream(c, upstreamReq, credential) {
				return
			}
			lastKind, lastStatus = "transport_error", http.StatusBadGateway
			continue
		}

		outcome, handled := d.relayOnce(c, upstreamReq, credential)
		if handled {
			return
		}
		lastKind, lastStatus = outcome.kind, outcome.status
	}

	writeError(c, lastStatus, lastKind, "all available credentials are exhausted or unavailable")
}

type attemptOutcome struct {
	kind   string
	status int
}

func (d *Dispatcher) buildUpstreamRequest(c *gin.Context, credential keypool.Credential, body []byte) (*http.Request, error) {
	target := "https://" + d.UpstreamHost + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		target += "?" + c.Request.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+string(credential))
	req.Host = d.UpstreamHost
	for _, name := range forwardedHeaders {
		if v := c.Request.Header.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}
	if req.Header.Get("X-Request-ID") == "" {
		if id := logging.GetRequestID(c.Request.Context()); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
	}
	return req, nil
}

// relayOnce performs the non-streaming branch. It returns (outcome, true)
// when the response has been written to the client and the loop must stop,
// or (outcome, false) when the attempt should be retried.
func (d *Dispatcher) relayOnce(c *gin.Context, req *http.Request, credential keypool.Credential) (attemptOutcome, bool) {
	resp, err := d.Client.Do(req)
	if err != nil {
		log.Warnf("dispatcher: upstream request failed: %v", err)
		d.Pool.MarkExhausted(credential)
		status := classifyTransportErr(err)
		return attemptOutcome{kind: errorKindForStatus(status), status: status}, false
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		d.Pool.MarkExhausted(credential)
		return attemptOutcome{kind: "transport_error", status: http.StatusBadGateway}, false
	}

	if quota.IsQuotaError(resp.StatusCode, strings.ToLower(string(respBody))) {
		d.Pool.MarkExhausted(credential)
		return attemptOutcome{kind: "all_keys_exhausted", status: http.StatusServiceUnavailable}, false
	}

	if resp.StatusCode == http.StatusOK {
		d.Pool.MarkSuccess(credential)
	}

	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	if json.Valid(respBody) {
		c.Data(resp.StatusCode, "application/json", respBody)
	} else {
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(resp.StatusCode, contentType, respBody)
	}
	return attemptOutcome{}, true
}

// relayStream performs the streaming branch. It returns true once the
// response has been committed to the client (success or a handled error
// frame) and the attempt loop must stop.
func (d *Dispatcher) relayStream(c *gin.Context, req *http.Request, credential keypool.Credential) bool {
	resp, err := d.Client.Do(req)
	if err != nil {
		log.Warnf("dispatcher: streaming upstream request failed: %v", err)
		d.Pool.MarkExhausted(credential)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		if quota.IsQuotaError(resp.StatusCode, strings.ToLower(string(errBody))) {
			d.Pool.MarkExhausted(credential)
		}
		writeStreamErrorFrame(c, resp.StatusCode, errBody)
		return true
	}

	d.Pool.MarkSuccess(credential)
	d.writeSSEHeaders(c)

	flusher, _ := c.Writer.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				return true
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr != nil {
			break
		}
	}
	return true
}

func (d *Dispatcher) writeSSEHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.WriteHeader(http.StatusOK)
}

func writeStreamErrorFrame(c *gin.Context, status int, body []byte) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.Writer.WriteHeader(status)

	payload := errorPayload(errorKindForStatus(status), extractMessage(body))
	_, _ = c.Writer.Write([]byte("data: " + string(payload) + "\n\n"))
	_, _ = c.Writer.Write([]byte("data: [DONE]\n\n"))
	if flusher, ok := c.Writer.(http.Flusher); ok {
		flusher.Flush()
	}
}

func classifyTransportErr(err error) int {
	if ctxErr, ok := err.(interface{ Timeout() bool }); ok && ctxErr.Timeout() {
		return http.StatusGatewayTimeout
	}
	if err == context.DeadlineExceeded {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func extractMessage(body []byte) string {
	if len(body) == 0 {
		return "upstream request failed"
	}
	return string(body)
}

func errorKindForStatus(status int) string {
	switch status {
	case http.StatusGatewayTimeout:
		return "timeout"
	case http.StatusServiceUnavailable:
		return "all_keys_exhausted"
	default:
		return "transport_error"
	}
}

func errorPayload(kind, message string) []byte {
	payload, _ := json.Marshal(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    kind,
		},
	})
	return payload
}

func writeError(c *gin.Context, status int, kind, message string) {
	c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	c.JSON(status, map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    kind,
		},
	})
}

func detectStream(body []byte) bool {
	var probe struct {
		Stream bool `json:"stream"`
	}
	if len(body) == 0 {
		return false
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return false
	}
	return probe.Stream
}
