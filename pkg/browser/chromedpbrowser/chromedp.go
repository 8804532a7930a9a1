// Package chromedpbrowser provides a browser.Launcher backed by a local
// Chrome/Chromium driven over the DevTools protocol with chromedp.
package chromedpbrowser

import (
	"context"
	"errors"
	"fmt"
	"mapslinks/pkg/browser"
	"mapslinks/pkg/logger"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Options configure how Chrome is started.
type Options struct {
	// Headless runs Chrome without a window.
	Headless bool
	// ExecPath is the Chrome binary; empty means chromedp's lookup of common locations.
	ExecPath string
	// UserAgent overrides the browser's user agent when set.
	UserAgent string
	// NoSandbox disables the Chrome sandbox, required when running as root in containers.
	NoSandbox bool
}

// Launcher starts one Chrome process per session.
type Launcher struct {
	options Options
}

var _ browser.Launcher = (*Launcher)(nil)

// New returns a Launcher using options.
func New(options Options) *Launcher {
	return &Launcher{options: options}
}

func (l *Launcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.options.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if l.options.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if l.options.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.options.ExecPath))
	}
	if l.options.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.options.UserAgent))
	}

	return opts
}

// Launch starts Chrome and attaches to its initial tab. The browser outlives
// ctx; only its values (the logger) are inherited. Cancelling ctx while
// Chrome is starting aborts the launch.
func (l *Launcher) Launch(ctx context.Context) (browser.Session, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), l.allocatorOptions()...)

	sugar := logger.Get(ctx).Sugar()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)

	s := newSession(tabCtx, func() {
		cancelTab()
		cancelAlloc()
	})

	stop := context.AfterFunc(ctx, s.cancel)
	// the first Run allocates the browser
	err := chromedp.Run(tabCtx, page.SetLifecycleEventsEnabled(true))
	if !stop() {
		s.cancel()

		return nil, fmt.Errorf("could not start chrome: %w", ctx.Err())
	}
	if err != nil {
		s.cancel()

		return nil, fmt.Errorf("could not start chrome: %w", err)
	}

	if c := chromedp.FromContext(tabCtx); c != nil && c.Target != nil {
		s.mainFrame = string(c.Target.TargetID)
	}
	chromedp.ListenTarget(tabCtx, s.onTargetEvent)

	return s, nil
}

// session is a single Chrome tab.
type session struct {
	ctx    context.Context //nolint: containedctx
	cancel context.CancelFunc

	// mainFrame is the top-level frame ID, equal to the tab's target ID.
	mainFrame string

	mu sync.Mutex
	// idle reports whether the current document reached network idle.
	idle bool
	// changed is closed and replaced whenever idle changes.
	changed chan struct{}

	closeOnce sync.Once
	closeErr  error
}

var _ browser.Session = (*session)(nil)

func newSession(ctx context.Context, cancel context.CancelFunc) *session {
	return &session{
		ctx:     ctx,
		cancel:  cancel,
		changed: make(chan struct{}),
	}
}

// operationContext derives a context from the tab that also honours the
// deadline and cancellation of the caller's ctx.
func (s *session) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(s.ctx)
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		opCtx, cancelDeadline = context.WithDeadline(opCtx, deadline)
		prev := cancel
		cancel = func() {
			cancelDeadline()
			prev()
		}
	}
	stop := context.AfterFunc(ctx, cancel)

	return opCtx, func() {
		stop()
		cancel()
	}
}

func (s *session) setIdle(idle bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idle = idle
	close(s.changed)
	s.changed = make(chan struct{})
}

// onTargetEvent tracks lifecycle events of the main frame. A new document
// (including one started by a client-side redirect) clears idleness.
func (s *session) onTargetEvent(ev any) {
	e, ok := ev.(*page.EventLifecycleEvent)
	if !ok || (s.mainFrame != "" && string(e.FrameID) != s.mainFrame) {
		return
	}

	switch e.Name {
	case "init":
		s.setIdle(false)
	case "networkIdle":
		s.setIdle(true)
	}
}

// Navigate implements browser.Session.
func (s *session) Navigate(ctx context.Context, url string) error {
	opCtx, cancel := s.operationContext(ctx)
	defer cancel()

	s.setIdle(false)
	err := chromedp.Run(opCtx, chromedp.Navigate(url))

	return classifyNavigationError(ctx, opCtx, err)
}

func classifyNavigationError(ctx, opCtx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(ctx.Err(), context.DeadlineExceeded),
		errors.Is(opCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", browser.ErrNavigationTimeout, err)
	case ctx.Err() != nil:
		return fmt.Errorf("navigation aborted: %w", ctx.Err())
	case strings.HasPrefix(err.Error(), "page load error"):
		// chromedp reports net::ERR_* failures this way
		return fmt.Errorf("%w: %w", browser.ErrNavigation, err)
	default:
		return fmt.Errorf("could not navigate: %w", err)
	}
}

// WaitNetworkIdle implements browser.Session.
func (s *session) WaitNetworkIdle(ctx context.Context) error {
	for {
		s.mu.Lock()
		idle, changed := s.idle, s.changed
		s.mu.Unlock()

		if idle {
			return nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return fmt.Errorf("could not wait for network idle: %w", ctx.Err())
		case <-s.ctx.Done():
			return fmt.Errorf("browser closed: %w", s.ctx.Err())
		}
	}
}

// CurrentURL implements browser.Session.
func (s *session) CurrentURL(ctx context.Context) (string, error) {
	opCtx, cancel := s.operationContext(ctx)
	defer cancel()

	var location string
	if err := chromedp.Run(opCtx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("could not read location: %w", err)
	}

	return location, nil
}

// Close implements browser.Session. It is safe to call more than once.
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		err := chromedp.Cancel(s.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("could not close chrome: %w", err)
		}
		s.cancel()
	})

	return s.closeErr
}
