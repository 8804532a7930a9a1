package resolver_test

import (
	"context"
	"errors"
	"fmt"
	"mapslinks/internal/resolver"
	"mapslinks/pkg/browser"
	mockbrowser "mapslinks/pkg/browser/mock"
	"mapslinks/pkg/logger"
	"mapslinks/pkg/serrors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	shortLink = "https://maps.app.goo.gl/abc123"
	longURL   = "https://www.google.com/maps/place/X/@40.7128,-74.006,15z/data=!3d40.7128!4d-74.006"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func newSession(t *testing.T) *mockbrowser.MockSession {
	t.Helper()

	return mockbrowser.NewMockSession(gomock.NewController(t))
}

func TestResolve_NetworkIdle(t *testing.T) {
	s := newSession(t)
	r := resolver.New(resolver.Options{
		NavigationTimeout:  time.Minute,
		SettleDelay:        time.Hour, // must not be slept when idle arrives
		WaitForNetworkIdle: true,
		IdleTimeout:        time.Second,
	})

	gomock.InOrder(
		s.EXPECT().Navigate(gomock.Any(), shortLink).DoAndReturn(func(ctx context.Context, _ string) error {
			deadline, ok := ctx.Deadline()
			require.True(t, ok, "navigation must be bounded")
			require.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

			return nil
		}),
		s.EXPECT().WaitNetworkIdle(gomock.Any()).Return(nil),
		s.EXPECT().CurrentURL(gomock.Any()).Return(longURL, nil),
	)

	got, err := r.Resolve(context.Background(), s, shortLink)
	require.NoError(t, err)
	require.Equal(t, longURL, got)
}

func TestResolve_SettleDelayWhenIdleDisabled(t *testing.T) {
	s := newSession(t)
	r := resolver.New(resolver.Options{
		NavigationTimeout: time.Minute,
		SettleDelay:       30 * time.Millisecond,
	})

	s.EXPECT().Navigate(gomock.Any(), shortLink).Return(nil)
	s.EXPECT().CurrentURL(gomock.Any()).Return(longURL, nil)

	start := time.Now()
	got, err := r.Resolve(context.Background(), s, shortLink)
	require.NoError(t, err)
	require.Equal(t, longURL, got)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestResolve_FallsBackToSettleDelay(t *testing.T) {
	cases := map[string]error{
		"unsupported": browser.ErrIdleUnsupported,
		"idle timeout": fmt.Errorf("could not wait for network idle: %w", context.DeadlineExceeded),
	}

	for name, idleErr := range cases {
		t.Run(name, func(t *testing.T) {
			s := newSession(t)
			r := resolver.New(resolver.Options{
				NavigationTimeout:  time.Minute,
				SettleDelay:        10 * time.Millisecond,
				WaitForNetworkIdle: true,
				IdleTimeout:        time.Second,
			})

			s.EXPECT().Navigate(gomock.Any(), shortLink).Return(nil)
			s.EXPECT().WaitNetworkIdle(gomock.Any()).Return(idleErr)
			s.EXPECT().CurrentURL(gomock.Any()).Return(longURL, nil)

			got, err := r.Resolve(context.Background(), s, shortLink)
			require.NoError(t, err)
			require.Equal(t, longURL, got)
		})
	}
}

func TestResolve_UnexpectedURLIsNotAnError(t *testing.T) {
	s := newSession(t)
	r := resolver.New(resolver.Options{NavigationTimeout: time.Minute})

	s.EXPECT().Navigate(gomock.Any(), shortLink).Return(nil)
	s.EXPECT().CurrentURL(gomock.Any()).Return(shortLink, nil)

	got, err := r.Resolve(context.Background(), s, shortLink)
	require.NoError(t, err)
	require.Equal(t, shortLink, got)
}

func TestResolve_NavigationErrors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		kind     serrors.Kind
		describe string
	}{
		{
			name:     "timeout",
			err:      fmt.Errorf("%w: context deadline exceeded", browser.ErrNavigationTimeout),
			kind:     serrors.ErrNavigation,
			describe: "NavigationError: timeout",
		},
		{
			name:     "unreachable",
			err:      fmt.Errorf("%w: net::ERR_NAME_NOT_RESOLVED", browser.ErrNavigation),
			kind:     serrors.ErrNavigation,
			describe: "NavigationError: unreachable link",
		},
		{
			name:     "browser failure",
			err:      errors.New("websocket: close 1006"),
			kind:     serrors.ErrBrowser,
			describe: "BrowserError: browser automation failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSession(t)
			r := resolver.New(resolver.Options{NavigationTimeout: time.Minute})

			s.EXPECT().Navigate(gomock.Any(), shortLink).Return(tc.err)

			got, err := r.Resolve(context.Background(), s, shortLink)
			require.Empty(t, got)
			require.ErrorIs(t, err, tc.kind)
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.describe, serrors.Describe(err, serrors.ErrBrowser))
		})
	}
}

func TestResolve_SettleExceedsNavigationTimeout(t *testing.T) {
	s := newSession(t)
	r := resolver.New(resolver.Options{
		NavigationTimeout: 20 * time.Millisecond,
		SettleDelay:       time.Hour,
	})

	s.EXPECT().Navigate(gomock.Any(), shortLink).Return(nil)

	_, err := r.Resolve(context.Background(), s, shortLink)
	require.ErrorIs(t, err, serrors.ErrNavigation)
	require.Equal(t, "NavigationError: timeout", serrors.Describe(err, serrors.ErrBrowser))
}

func TestResolve_CurrentURLFailure(t *testing.T) {
	s := newSession(t)
	r := resolver.New(resolver.Options{NavigationTimeout: time.Minute})

	s.EXPECT().Navigate(gomock.Any(), shortLink).Return(nil)
	s.EXPECT().CurrentURL(gomock.Any()).Return("", errors.New("target crashed"))

	_, err := r.Resolve(context.Background(), s, shortLink)
	require.ErrorIs(t, err, serrors.ErrBrowser)
}
