package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// DriverChromedp drives a locally installed Chrome over the DevTools protocol.
	DriverChromedp = "chromedp"
	// DriverPlaywright drives Playwright's Chromium.
	DriverPlaywright = "playwright"
)

// Config represents the application configuration structure.
// It is loaded once at startup and passed explicitly to the components
// that need it.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Host is the interface the HTTP server binds to
		Host string `env:"HTTP_HOST" env-default:"0.0.0.0" yaml:"host"`
		// Port is the port the HTTP server listens on; PaaS targets inject it as PORT
		Port int `env:"PORT" env-default:"8080" yaml:"port" validate:"min=1,max=65535"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response.
		// A batch is bounded only by the sum of its navigation timeouts, so this is generous.
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MaxBodyBytes limits the size of submitted link lists and results
		MaxBodyBytes int64 `env:"HTTP_MAX_BODY_BYTES" env-default:"1048576" yaml:"maxBodyBytes" validate:"min=1"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// Browser configures the headless browser used to follow short links
	Browser struct {
		// Driver selects the automation backend: chromedp or playwright
		Driver string `env:"BROWSER_DRIVER" env-default:"chromedp" yaml:"driver" validate:"oneof=chromedp playwright"`
		// Headless runs the browser without a window
		Headless bool `env:"BROWSER_HEADLESS" env-default:"true" yaml:"headless"`
		// ExecPath is the browser binary; empty lets the driver find one
		ExecPath string `env:"BROWSER_EXEC_PATH" yaml:"execPath"`
		// UserAgent overrides the browser user agent
		UserAgent string `env:"BROWSER_USER_AGENT" yaml:"userAgent"`
		// NoSandbox disables the Chrome sandbox (needed when running as root in containers)
		NoSandbox bool `env:"BROWSER_NO_SANDBOX" env-default:"true" yaml:"noSandbox"`
		// NavigationTimeout bounds a single navigation including settling
		NavigationTimeout time.Duration `env:"BROWSER_NAVIGATION_TIMEOUT" env-default:"60s" yaml:"navigationTimeout" validate:"min=20s,max=60s"` //nolint: lll
		// SettleDelay is waited after navigation when no network idle signal is used
		SettleDelay time.Duration `env:"BROWSER_SETTLE_DELAY" env-default:"2500ms" yaml:"settleDelay" validate:"min=0"`
		// WaitForNetworkIdle waits for the network idle signal instead of the settle delay when available
		WaitForNetworkIdle bool `env:"BROWSER_WAIT_FOR_NETWORK_IDLE" env-default:"true" yaml:"waitForNetworkIdle"`
		// IdleTimeout bounds the wait for the network idle signal
		IdleTimeout time.Duration `env:"BROWSER_IDLE_TIMEOUT" env-default:"10s" yaml:"idleTimeout" validate:"min=0"`
		// InstallOnStart installs the playwright driver and browser before serving
		InstallOnStart bool `env:"BROWSER_INSTALL_ON_START" env-default:"false" yaml:"installOnStart"`
	} `yaml:"browser"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.HTTP.Host, strconv.Itoa(c.HTTP.Port))
}

// Validate checks value ranges that cleanenv cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Load reads the YAML config file at configPath, applies environment
// overrides and validates the result. A missing file is not an error:
// configuration then comes from the environment and defaults only.
func Load(configPath string) (*Config, error) {
	var cfg Config

	_, statErr := os.Stat(configPath)
	switch {
	case configPath != "" && statErr == nil:
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	case configPath == "" || errors.Is(statErr, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read config from environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("could not read config: %w", statErr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
