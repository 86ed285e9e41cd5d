package embed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bryanchriswhite/RetroDesk/internal/logger"
)

// ErrBlocked marks content that could not be inspected or refused framing
var ErrBlocked = errors.New("embedded content blocked")

// Inspector tries to look inside the framed resource. Any error means the
// frame is considered blocked.
type Inspector interface {
	Inspect(ctx context.Context, target string) error
}

// InspectorFunc adapts a function to Inspector
type InspectorFunc func(ctx context.Context, target string) error

// Inspect calls f
func (f InspectorFunc) Inspect(ctx context.Context, target string) error {
	return f(ctx, target)
}

// Verdict is the committed outcome of a watch
type Verdict string

const (
	VerdictPending  Verdict = "pending"
	VerdictEmbedded Verdict = "embedded"
	VerdictBlocked  Verdict = "blocked"
)

// Trigger names which path committed the verdict
type Trigger string

const (
	TriggerLoad    Trigger = "load"
	TriggerTimeout Trigger = "timeout"
)

// Result is delivered once per watch
type Result struct {
	Verdict Verdict
	Trigger Trigger
	Err     error
}

// Detector runs framing-failure detection. It is a heuristic: slow but
// legitimate content can be reported blocked, and some blocking policies
// pass inspection.
type Detector struct {
	inspector Inspector
	grace     time.Duration
	fallback  time.Duration
	timeout   time.Duration
}

// NewDetector creates a detector. grace is the pause after a load signal
// before inspecting; fallback is when inspection runs even without one;
// timeout bounds each inspection.
func NewDetector(inspector Inspector, grace, fallback, timeout time.Duration) *Detector {
	return &Detector{
		inspector: inspector,
		grace:     grace,
		fallback:  fallback,
		timeout:   timeout,
	}
}

// Watch tracks one framed resource
type Watch struct {
	target string
	ctx    context.Context
	cancel context.CancelFunc

	loadOnce sync.Once
	loaded   chan struct{}

	commitOnce sync.Once
	done       chan struct{}

	mu     sync.Mutex
	result Result
}

// Watch starts both detection paths for target. commit is called exactly
// once with the first inspection outcome, unless the watch is cancelled
// first.
func (d *Detector) Watch(parent context.Context, target string, commit func(Result)) *Watch {
	ctx, cancel := context.WithCancel(parent)
	w := &Watch{
		target: target,
		ctx:    ctx,
		cancel: cancel,
		loaded: make(chan struct{}),
		done:   make(chan struct{}),
		result: Result{Verdict: VerdictPending},
	}

	go d.loadPath(w, commit)
	go d.timeoutPath(w, commit)
	return w
}

// Loaded records the frame's load signal; repeated calls are ignored
func (w *Watch) Loaded() {
	w.loadOnce.Do(func() { close(w.loaded) })
}

// Cancel abandons the watch; a verdict not yet committed is dropped
func (w *Watch) Cancel() {
	w.cancel()
}

// Done is closed once a verdict is committed
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// Result returns the committed outcome, or a pending result
func (w *Watch) Result() Result {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

func (d *Detector) loadPath(w *Watch, commit func(Result)) {
	select {
	case <-w.ctx.Done():
		return
	case <-w.loaded:
	}

	if !sleep(w.ctx, d.grace) {
		return
	}
	d.inspectAndCommit(w, TriggerLoad, commit)
}

func (d *Detector) timeoutPath(w *Watch, commit func(Result)) {
	if !sleep(w.ctx, d.fallback) {
		return
	}
	d.inspectAndCommit(w, TriggerTimeout, commit)
}

func (d *Detector) inspectAndCommit(w *Watch, trigger Trigger, commit func(Result)) {
	ctx := w.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res := Result{Verdict: VerdictEmbedded, Trigger: trigger}
	if err := d.inspect(ctx, w.target); err != nil {
		res.Verdict = VerdictBlocked
		res.Err = err
	}

	// The losing path, or a cancelled watch, must not commit
	if w.ctx.Err() != nil {
		return
	}

	w.commitOnce.Do(func() {
		w.mu.Lock()
		w.result = res
		w.mu.Unlock()
		close(w.done)
		w.cancel()

		logger.WithComponent("embed").Debug().
			Str("target", w.target).
			Str("verdict", string(res.Verdict)).
			Str("trigger", string(res.Trigger)).
			AnErr("reason", res.Err).
			Msg("Framing verdict committed")

		if commit != nil {
			commit(res)
		}
	})
}

// inspect converts panics and missing inspectors into a blocked verdict
func (d *Detector) inspect(ctx context.Context, target string) (err error) {
	if d.inspector == nil {
		return ErrBlocked
	}
	defer func() {
		if r := recover(); r != nil {
			err = ErrBlocked
		}
	}()
	return d.inspector.Inspect(ctx, target)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
