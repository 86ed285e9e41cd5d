// Package icon resolves item icon references to image bytes, falling back
// to a generated broken-image placeholder.
package icon

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/fetch"
	"github.com/bryanchriswhite/RetroDesk/internal/logger"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
)

// maxIconBytes bounds a fetched icon
const maxIconBytes = 1 << 20

// Icon is a resolved image
type Icon struct {
	Data        []byte
	ContentType string
	// Placeholder is set when the reference could not be resolved
	Placeholder bool
}

// Resolver fetches and caches icons
type Resolver struct {
	client *resty.Client
	base   *url.URL

	mu    sync.RWMutex
	cache map[string]Icon

	placeholder Icon
}

// NewResolver creates a resolver. base resolves relative references and may
// be empty, in which case relative references yield the placeholder.
func NewResolver(client *resty.Client, base string) *Resolver {
	if client == nil {
		client = fetch.NewClient(fetch.Options{Timeout: 10 * time.Second, Retries: 1})
	}
	r := &Resolver{
		client:      client,
		cache:       make(map[string]Icon),
		placeholder: Icon{Data: placeholderPNG(), ContentType: "image/png", Placeholder: true},
	}
	if base != "" {
		if u, err := url.Parse(base); err == nil {
			r.base = u
		}
	}
	return r
}

// Placeholder returns the broken-image icon
func (r *Resolver) Placeholder() Icon {
	return r.placeholder
}

// Resolve returns the icon for ref. It never fails: unresolvable references
// yield the placeholder. Only successful fetches are cached.
func (r *Resolver) Resolve(ctx context.Context, ref string) Icon {
	target, err := r.resolve(ref)
	if err != nil {
		logger.WithComponent("icon").Debug().Err(err).Str("ref", ref).Msg("Unresolvable icon reference")
		return r.placeholder
	}

	r.mu.RLock()
	cached, ok := r.cache[target]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	icon, err := r.fetch(ctx, target)
	if err != nil {
		logger.WithComponent("icon").Debug().Err(err).Str("url", target).Msg("Icon fetch failed")
		return r.placeholder
	}

	r.mu.Lock()
	r.cache[target] = icon
	r.mu.Unlock()
	return icon
}

func (r *Resolver) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty icon reference")
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		return u.String(), nil
	}
	if r.base == nil {
		return "", fmt.Errorf("relative reference without a base")
	}
	return r.base.ResolveReference(u).String(), nil
}

func (r *Resolver) fetch(ctx context.Context, target string) (Icon, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		return Icon{}, err
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		return Icon{}, fmt.Errorf("status %d", resp.StatusCode())
	}

	data, err := fetch.ReadLimited(body, maxIconBytes)
	if err != nil {
		return Icon{}, err
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return Icon{}, fmt.Errorf("not an image: %s", mt.String())
	}
	return Icon{Data: data, ContentType: mt.String()}, nil
}
