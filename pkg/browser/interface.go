// Package browser defines the narrow browser automation capability the
// resolver relies on. Drivers (chromedp, playwright) live in subpackages and
// translate their native failures into the sentinels declared here.
//
//go:generate mockgen -package mockbrowser -source=interface.go -destination=mock/mockbrowser.go *
package browser

import (
	"context"
	"errors"
)

var (
	// ErrNavigation is returned when a page could not be loaded, e.g. on DNS
	// or TLS failures or when the server is unreachable.
	ErrNavigation = errors.New("navigation failed")
	// ErrNavigationTimeout is returned when navigation did not finish before
	// the context deadline or the driver's own timeout.
	ErrNavigationTimeout = errors.New("navigation timed out")
	// ErrIdleUnsupported is returned by sessions that cannot report network idleness.
	ErrIdleUnsupported = errors.New("network idle signal not supported")
)

// Launcher starts browser sessions.
type Launcher interface {
	// Launch starts a browser with a single page. The returned session must be
	// closed by the caller.
	Launch(ctx context.Context) (Session, error)
}

// Session is a single page in a running browser. It is not safe for
// concurrent use: concurrent navigations would race on the current URL.
type Session interface {
	// Navigate loads url and returns once the load event fired or ctx expired.
	Navigate(ctx context.Context, url string) error
	// WaitNetworkIdle blocks until the page had no network activity for a
	// short while after the last navigation.
	WaitNetworkIdle(ctx context.Context) error
	// CurrentURL returns the URL shown in the address bar.
	CurrentURL(ctx context.Context) (string, error)
	// Close shuts the page and the browser down.
	Close() error
}
