// Package fetch builds the outbound HTTP client shared by the relay, the
// frame inspector, icon resolution and the weather widget.
package fetch

import (
	"errors"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
)

// UserAgent identifies desktop-originated requests upstream
const UserAgent = "RetroDesk/1.0 (+relay)"

// Options tunes a client
type Options struct {
	Timeout time.Duration
	Retries int
	MinWait time.Duration
	MaxWait time.Duration
	Headers map[string]string
}

// DefaultOptions are used for anything not set explicitly
func DefaultOptions() Options {
	return Options{
		Timeout: 20 * time.Second,
		Retries: 2,
		MinWait: 250 * time.Millisecond,
		MaxWait: 3 * time.Second,
	}
}

// NewClient returns a resty client whose requests are retried by
// retryablehttp on connection errors and 5xx responses
func NewClient(opts Options) *resty.Client {
	def := DefaultOptions()
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.MinWait <= 0 {
		opts.MinWait = def.MinWait
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = def.MaxWait
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	retryClient.RetryWaitMin = opts.MinWait
	retryClient.RetryWaitMax = opts.MaxWait
	retryClient.Logger = nil
	// Hand the last response back after retries run out so callers see the
	// upstream status instead of an error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", UserAgent)

	for k, v := range opts.Headers {
		client.SetHeader(k, v)
	}
	return client
}

// ErrTooLarge is returned by ReadLimited when the body exceeds the limit
var ErrTooLarge = errors.New("response body exceeds limit")

// ReadLimited reads at most limit bytes from r, failing if more remain.
// A limit <= 0 disables the check.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
