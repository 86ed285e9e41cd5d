// Package relay fetches remote resources and re-serves them with headers
// that allow them to be framed by the desktop.
package relay

import (
	"errors"
	"net/http"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/embed"
	"github.com/bryanchriswhite/RetroDesk/internal/fetch"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Path is where the relay is mounted
const Path = "/proxy"

// PermissiveCSP replaces whatever policy the upstream sent
const PermissiveCSP = "default-src * 'unsafe-inline' 'unsafe-eval' data: blob:;"

// Options configures a Relay
type Options struct {
	Timeout           time.Duration
	Retries           int
	MaxBodyBytes      int64
	RequestsPerSecond float64
	Burst             int
	// Registerer receives the relay metrics; nil skips registration
	Registerer prometheus.Registerer
	// Client overrides the upstream HTTP client
	Client *resty.Client
}

// Relay is an http.Handler serving GET Path?url=<target>
type Relay struct {
	client  *resty.Client
	limiter *clientLimiter
	maxBody int64
	metrics *Metrics
}

// New creates a relay
func New(opts Options) *Relay {
	client := opts.Client
	if client == nil {
		fo := fetch.DefaultOptions()
		if opts.Timeout > 0 {
			fo.Timeout = opts.Timeout
		}
		if opts.Retries >= 0 {
			fo.Retries = opts.Retries
		}
		client = fetch.NewClient(fo)
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 32 << 20
	}
	return &Relay{
		client:  client,
		limiter: newClientLimiter(opts.RequestsPerSecond, opts.Burst),
		maxBody: maxBody,
		metrics: NewMetrics(opts.Registerer),
	}
}

// ServeHTTP implements http.Handler
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.WithComponent("relay")

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		rl.metrics.Requests.WithLabelValues("bad_method").Inc()
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !rl.limiter.Allow(r) {
		rl.metrics.Requests.WithLabelValues("rate_limited").Inc()
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	target := r.URL.Query().Get("url")
	if target == "" {
		rl.metrics.Requests.WithLabelValues("missing_url").Inc()
		http.Error(w, "Missing url query param", http.StatusBadRequest)
		return
	}
	if !embed.IsAbsolute(target) {
		rl.metrics.Requests.WithLabelValues("invalid_url").Inc()
		http.Error(w, "Invalid url query param", http.StatusBadRequest)
		return
	}

	start := time.Now()
	resp, err := rl.client.R().
		SetContext(r.Context()).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		rl.fail(w, target, err)
		return
	}
	raw := resp.RawBody()
	defer raw.Close()

	data, err := fetch.ReadLimited(raw, rl.maxBody)
	rl.metrics.UpstreamLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		rl.fail(w, target, err)
		return
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("X-Frame-Options", "ALLOWALL")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Content-Security-Policy", PermissiveCSP)
	w.WriteHeader(resp.StatusCode())

	if r.Method == http.MethodHead {
		rl.metrics.Requests.WithLabelValues("ok").Inc()
		return
	}
	n, err := w.Write(data)
	rl.metrics.BytesServed.Add(float64(n))
	if err != nil {
		log.Debug().Err(err).Str("url", target).Msg("Client went away")
		return
	}
	rl.metrics.Requests.WithLabelValues("ok").Inc()

	log.Debug().
		Str("url", target).
		Int("status", resp.StatusCode()).
		Str("content_type", contentType).
		Int("bytes", n).
		Msg("Relayed")
}

func (rl *Relay) fail(w http.ResponseWriter, target string, err error) {
	outcome := "upstream_error"
	if errors.Is(err, fetch.ErrTooLarge) {
		outcome = "too_large"
	}
	rl.metrics.Requests.WithLabelValues(outcome).Inc()
	logger.WithComponent("relay").Warn().Err(err).Str("url", target).Msg("Proxy fetch failed")
	http.Error(w, "Proxy fetch failed", http.StatusBadGateway)
}
