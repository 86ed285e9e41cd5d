package embed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bryanchriswhite/RetroDesk/internal/fetch"
	"github.com/go-resty/resty/v2"
)

// maxInspectBytes caps how much of a document is read for inspection
const maxInspectBytes = 4 << 20

// HTTPInspector approximates "can the frame's document be read" from the
// server side: it fetches the resource, honours framing headers and treats
// empty documents as blocked
type HTTPInspector struct {
	client *resty.Client
	base   *url.URL
	relay  string
}

// NewHTTPInspector creates an inspector. base resolves relative resources
// (the desktop's own origin) and may be empty; relay, when set, routes
// absolute targets through the relay endpoint.
func NewHTTPInspector(client *resty.Client, base, relay string) *HTTPInspector {
	in := &HTTPInspector{client: client, relay: relay}
	if base != "" {
		if u, err := url.Parse(base); err == nil {
			in.base = u
		}
	}
	if in.client == nil {
		in.client = fetch.NewClient(fetch.DefaultOptions())
	}
	return in
}

// Inspect implements Inspector
func (in *HTTPInspector) Inspect(ctx context.Context, target string) error {
	resolved, viaRelay, err := in.resolve(target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlocked, err)
	}
	if resolved == "" {
		// Same-origin relative resource with no known origin: frameable
		return nil
	}

	resp, err := in.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(resolved)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlocked, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 400 {
		return fmt.Errorf("%w: upstream status %d", ErrBlocked, resp.StatusCode())
	}

	if !viaRelay {
		if reason := framingRefusal(resp.Header().Get("X-Frame-Options"), resp.Header().Get("Content-Security-Policy")); reason != "" {
			return fmt.Errorf("%w: %s", ErrBlocked, reason)
		}
	}

	data, err := fetch.ReadLimited(body, maxInspectBytes)
	if errors.Is(err, fetch.ErrTooLarge) {
		// Large documents are not empty
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBlocked, err)
	}

	return inspectDocument(resp.Header().Get("Content-Type"), data)
}

func (in *HTTPInspector) resolve(target string) (string, bool, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", false, fmt.Errorf("empty target")
	}

	if IsAbsolute(target) {
		if in.relay != "" {
			return RelayURL(in.relay, target), true, nil
		}
		return target, false, nil
	}

	ref, err := url.Parse(target)
	if err != nil {
		return "", false, err
	}
	if ref.Scheme != "" {
		// data:, blob:, javascript: and friends cannot be fetched here
		return "", false, nil
	}
	if in.base == nil {
		return "", false, nil
	}
	return in.base.ResolveReference(ref).String(), false, nil
}

// framingRefusal explains why headers forbid cross-origin framing, or
// returns "" when they do not
func framingRefusal(xfo, csp string) string {
	switch strings.ToUpper(strings.TrimSpace(xfo)) {
	case "DENY":
		return "X-Frame-Options DENY"
	case "SAMEORIGIN":
		return "X-Frame-Options SAMEORIGIN"
	}

	for _, directive := range strings.Split(csp, ";") {
		fields := strings.Fields(strings.ToLower(directive))
		if len(fields) == 0 || fields[0] != "frame-ancestors" {
			continue
		}
		sources := fields[1:]
		if len(sources) == 0 {
			return "CSP frame-ancestors empty"
		}
		for _, src := range sources {
			if src == "*" || strings.HasPrefix(src, "http") {
				return ""
			}
		}
		return "CSP frame-ancestors " + strings.Join(sources, " ")
	}
	return ""
}

// inspectDocument fails for empty bodies and HTML documents with nothing
// rendered in them
func inspectDocument(contentType string, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty document", ErrBlocked)
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "text/html" && mediaType != "application/xhtml+xml" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: unreadable document: %v", ErrBlocked, err)
	}

	body := doc.Find("body")
	if strings.TrimSpace(body.Text()) != "" {
		return nil
	}
	if body.Find("img, iframe, embed, object, video, canvas, svg, script").Length() > 0 {
		return nil
	}
	return fmt.Errorf("%w: document has no content", ErrBlocked)
}
