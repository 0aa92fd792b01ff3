// Package modelcatalog implements the optional upstream model-list refresh
// probe: a TTL-gated fetch of the upstream's own model listing. Ids the
// static registry doesn't already know about are surfaced alongside it in
// the /v1/models response.
package modelcatalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/routekeeper/gatewayproxy/internal/httpx"
	"github.com/routekeeper/gatewayproxy/internal/keypool"
)

// upstreamModel is the shape of a single entry in an OpenAI-compatible
// GET /v1/models response.
type upstreamModel struct {
	ID string `json:"id"`
}

type upstreamModelList struct {
	Data []upstreamModel `json:"data"`
}

// Refresher probes the upstream's model listing at most once per TTL and
// caches the most recent result for inspection by admin/listing endpoints.
type Refresher struct {
	mu          sync.Mutex
	client      *http.Client
	pool        *keypool.Pool
	upstreamURL string
	ttl         time.Duration
	lastFetch   time.Time
	lastIDs     []string
}

// New builds a Refresher that probes upstreamHost's /v1/models endpoint
// using a credential drawn from pool, caching results for ttl.
func New(pool *keypool.Pool, upstreamHost string, ttl time.Duration) *Refresher {
	return &Refresher{
		client:      httpx.NewUpstreamClient(),
		pool:        pool,
		upstreamURL: "https://" + upstreamHost + "/v1/models",
		ttl:         ttl,
	}
}

// RefreshIfStale probes the upstream when the cached result is older than
// the configured TTL, or unconditionally when force is true.
func (r *Refresher) RefreshIfStale(ctx context.Context, force bool) error {
	r.mu.Lock()
	stale := force || time.Since(r.lastFetch) >= r.ttl
	r.mu.Unlock()
	if !stale {
		return nil
	}
	return r.refresh(ctx)
}

func (r *Refresher) refresh(ctx context.Context) error {
	credential, ok := r.pool.Select()
	if !ok {
		return fmt.Errorf("modelcatalog: no credentials available to probe upstream")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.upstreamURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+string(credential))
	req.Header.Set("Accept-Encoding", "br, gzip")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("modelcatalog: probe failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("modelcatalog: reading probe response: %w", err)
	}

	switch {
	case strings.Contains(resp.Header.Get("Content-Encoding"), "br"):
		decoded, derr := httpx.DecodeBrotli(raw)
		if derr != nil {
			return fmt.Errorf("modelcatalog: brotli decode failed: %w", derr)
		}
		raw = decoded
	default:
		decoded, derr := httpx.DecodePossibleGzip(raw)
		if derr != nil {
			return fmt.Errorf("modelcatalog: gzip decode failed: %w", derr)
		}
		raw = decoded
	}

	if resp.StatusCode != http.StatusOK {
		r.pool.MarkExhausted(credential)
		return fmt.Errorf("modelcatalog: upstream returned %d", resp.StatusCode)
	}
	r.pool.MarkSuccess(credential)

	var list upstreamModelList
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("modelcatalog: decoding probe body: %w", err)
	}

	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		ids = append(ids, m.ID)
	}

	r.mu.Lock()
	r.lastFetch = time.Now()
	r.lastIDs = ids
	r.mu.Unlock()

	log.Infof("modelcatalog: refreshed upstream model list, %d entries", len(ids))
	return nil
}

// KnownIDs returns the most recently probed upstream model ids. Empty
// until the first successful refresh.
func (r *Refresher) KnownIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lastIDs))
	copy(out, r.lastIDs)
	return out
}
