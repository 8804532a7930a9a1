// Package resolver follows Google Maps short links in a browser session and
// reports the URL the page settled on.
package resolver

import (
	"context"
	"errors"
	"mapslinks/internal/config"
	"mapslinks/pkg/browser"
	"mapslinks/pkg/logger"
	"mapslinks/pkg/serrors"
	"time"

	"go.uber.org/zap"
)

// Options control how long a navigation may take and how the resolver
// decides that client-side redirects are finished.
type Options struct {
	// NavigationTimeout bounds navigation, settling and reading the URL back.
	NavigationTimeout time.Duration
	// SettleDelay is slept after navigation when the network idle signal is
	// disabled, unsupported or did not arrive.
	SettleDelay time.Duration
	// WaitForNetworkIdle prefers the session's network idle signal over SettleDelay.
	WaitForNetworkIdle bool
	// IdleTimeout bounds the wait for the network idle signal.
	IdleTimeout time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		NavigationTimeout:  cfg.Browser.NavigationTimeout,
		SettleDelay:        cfg.Browser.SettleDelay,
		WaitForNetworkIdle: cfg.Browser.WaitForNetworkIdle,
		IdleTimeout:        cfg.Browser.IdleTimeout,
	}
}

// Resolver resolves links one at a time inside a caller-owned session.
// It keeps no per-call state; concurrency safety comes from never sharing a
// session between concurrent calls.
type Resolver struct {
	options Options
}

// New creates a Resolver.
func New(options Options) *Resolver {
	return &Resolver{options: options}
}

// Resolve navigates session to link, waits for redirects to settle and
// returns the address bar URL. The result is best effort: a slow client-side
// redirect may still be in flight when the URL is read.
//
// Failures carry serrors.ErrNavigation when the link could not be loaded in
// time and serrors.ErrBrowser when the automation itself failed.
func (r *Resolver) Resolve(ctx context.Context, session browser.Session, link string) (string, error) {
	if r.options.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.options.NavigationTimeout)
		defer cancel()
	}

	if err := session.Navigate(ctx, link); err != nil {
		return "", classify(err)
	}

	if err := r.settle(ctx, session); err != nil {
		return "", classify(err)
	}

	finalURL, err := session.CurrentURL(ctx)
	if err != nil {
		return "", classify(err)
	}

	logger.Debug(ctx, "link resolved", zap.String("link", link), zap.String("finalURL", finalURL))

	return finalURL, nil
}

func (r *Resolver) settle(ctx context.Context, session browser.Session) error {
	if r.options.WaitForNetworkIdle {
		idleCtx, cancel := ctx, context.CancelFunc(func() {})
		if r.options.IdleTimeout > 0 {
			idleCtx, cancel = context.WithTimeout(ctx, r.options.IdleTimeout)
		}
		err := session.WaitNetworkIdle(idleCtx)
		cancel()

		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err() //nolint: wrapcheck
		}
		if !errors.Is(err, browser.ErrIdleUnsupported) {
			logger.Warn(ctx, "network did not become idle, falling back to settle delay", zap.Error(err))
		}
	}

	return sleep(ctx, r.options.SettleDelay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err() //nolint: wrapcheck
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, browser.ErrNavigationTimeout), errors.Is(err, context.DeadlineExceeded):
		return serrors.Wrap(serrors.ErrNavigation, err, "timeout")
	case errors.Is(err, context.Canceled):
		return serrors.Wrap(serrors.ErrNavigation, err, "aborted")
	case errors.Is(err, browser.ErrNavigation):
		return serrors.Wrap(serrors.ErrNavigation, err, "unreachable link")
	default:
		return serrors.Wrap(serrors.ErrBrowser, err, "browser automation failed")
	}
}
