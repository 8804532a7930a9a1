// Package pwbrowser provides a browser.Launcher backed by Playwright's
// Chromium. The Playwright driver and browser must be installed first, see
// Install.
package pwbrowser

import (
	"context"
	"errors"
	"fmt"
	"mapslinks/pkg/browser"
	"mapslinks/pkg/logger"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// Options configure how Chromium is started.
type Options struct {
	// Headless runs Chromium without a window.
	Headless bool
	// ExecPath points at a system Chromium instead of Playwright's bundled one.
	ExecPath string
	// UserAgent overrides the page's user agent when set.
	UserAgent string
}

// Install downloads the Playwright driver and its Chromium build. It is an
// explicit bootstrap step and is never run implicitly by Launch.
func Install(ctx context.Context) error {
	err := pw.Install(&pw.RunOptions{
		Browsers: []string{"chromium"},
		Logger:   logger.Slog(ctx),
	})
	if err != nil {
		return fmt.Errorf("could not install playwright: %w", err)
	}

	return nil
}

// Launcher starts one Playwright driver and Chromium per session.
type Launcher struct {
	options Options
}

var _ browser.Launcher = (*Launcher)(nil)

// New returns a Launcher using options.
func New(options Options) *Launcher {
	return &Launcher{options: options}
}

// Launch implements browser.Launcher.
func (l *Launcher) Launch(ctx context.Context) (browser.Session, error) {
	runtime, err := pw.Run(&pw.RunOptions{Logger: logger.Slog(ctx)})
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	launchOpts := pw.BrowserTypeLaunchOptions{Headless: pw.Bool(l.options.Headless)}
	if l.options.ExecPath != "" {
		launchOpts.ExecutablePath = pw.String(l.options.ExecPath)
	}
	chromium, err := runtime.Chromium.Launch(launchOpts)
	if err != nil {
		_ = runtime.Stop()

		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	pageOpts := pw.BrowserNewPageOptions{}
	if l.options.UserAgent != "" {
		pageOpts.UserAgent = pw.String(l.options.UserAgent)
	}
	p, err := chromium.NewPage(pageOpts)
	if err != nil {
		_ = chromium.Close()
		_ = runtime.Stop()

		return nil, fmt.Errorf("could not open page: %w", err)
	}

	return &session{runtime: runtime, browser: chromium, page: p}, nil
}

// session is a single Playwright page. Playwright calls are not context
// aware; the caller's deadline is translated into per-call timeouts.
type session struct {
	runtime *pw.Playwright
	browser pw.Browser
	page    pw.Page
}

var _ browser.Session = (*session)(nil)

// timeoutMillis converts the time left until ctx's deadline into a Playwright
// timeout. Zero disables Playwright's own timeout.
func timeoutMillis(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err //nolint: wrapcheck
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, nil
	}

	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	if left < time.Millisecond {
		left = time.Millisecond
	}

	return float64(left.Milliseconds()), nil
}

// Navigate implements browser.Session.
func (s *session) Navigate(ctx context.Context, url string) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return classifyNavigationError(err)
	}

	_, err = s.page.Goto(url, pw.PageGotoOptions{
		Timeout:   pw.Float(timeout),
		WaitUntil: pw.WaitUntilStateLoad,
	})

	return classifyNavigationError(err)
}

func classifyNavigationError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pw.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", browser.ErrNavigationTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("navigation aborted: %w", err)
	case errors.Is(err, pw.ErrTargetClosed):
		return fmt.Errorf("page closed: %w", err)
	default:
		return fmt.Errorf("%w: %w", browser.ErrNavigation, err)
	}
}

// WaitNetworkIdle implements browser.Session.
func (s *session) WaitNetworkIdle(ctx context.Context) error {
	timeout, err := timeoutMillis(ctx)
	if err != nil {
		return fmt.Errorf("could not wait for network idle: %w", err)
	}

	if err := s.page.WaitForLoadState(pw.PageWaitForLoadStateOptions{
		State:   pw.LoadStateNetworkidle,
		Timeout: pw.Float(timeout),
	}); err != nil {
		return fmt.Errorf("could not wait for network idle: %w", err)
	}

	return nil
}

// CurrentURL implements browser.Session.
func (s *session) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("could not read location: %w", err)
	}

	return s.page.URL(), nil
}

// Close implements browser.Session.
func (s *session) Close() error {
	var errs []error
	if err := s.page.Close(); err != nil && !errors.Is(err, pw.ErrTargetClosed) {
		errs = append(errs, fmt.Errorf("could not close page: %w", err))
	}
	if err := s.browser.Close(); err != nil && !errors.Is(err, pw.ErrTargetClosed) {
		errs = append(errs, fmt.Errorf("could not close chromium: %w", err))
	}
	if err := s.runtime.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("could not stop playwright: %w", err))
	}

	return errors.Join(errs...)
}
