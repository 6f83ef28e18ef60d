package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultCanvasBaseURL = "https://canvas.sydney.edu.au/api/v1"
	DefaultEdBaseURL     = "https://edstem.org/api"
	DefaultTimeout       = 30 * time.Second
	DefaultHTTPAddr      = ":8080"
)

// ErrMissingCredential marks a deployment fault: a backend was used without a token.
var ErrMissingCredential = errors.New("api token not configured")

// Backend names one of the two upstream services.
type Backend string

const (
	Canvas Backend = "Canvas"
	Ed     Backend = "Ed"
)

// TokenEnv is the environment variable that carries the backend's bearer token.
func (b Backend) TokenEnv() string {
	switch b {
	case Canvas:
		return "CANVAS_API_TOKEN"
	case Ed:
		return "ED_API_TOKEN"
	default:
		return ""
	}
}

// SensitiveString hides its value when printed or logged.
type SensitiveString string

func (s SensitiveString) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

func (s SensitiveString) Value() string {
	return string(s)
}

type Config struct {
	Canvas BackendConfig `koanf:"canvas"`
	Ed     BackendConfig `koanf:"ed"`
	Log    LogConfig     `koanf:"log"`
	HTTP   HTTPConfig    `koanf:"http"`
}

// BackendConfig is read-only after Load and shared by reference with the backend client.
type BackendConfig struct {
	Backend Backend         `koanf:"-"`
	BaseURL string          `koanf:"base_url" validate:"required,url"`
	Token   SensitiveString `koanf:"token"`
	Timeout time.Duration   `koanf:"timeout"  validate:"gt=0"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error disabled"`
	JSON  bool   `koanf:"json"`
}

type HTTPConfig struct {
	Addr           string          `koanf:"addr"            validate:"required"`
	Token          SensitiveString `koanf:"token"`
	AllowedOrigins []string        `koanf:"allowed_origins"`
}

type MissingCredentialError struct {
	Backend Backend
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf(
		"%s API token not configured. Please set the %s environment variable.",
		e.Backend, e.Backend.TokenEnv(),
	)
}

func (e *MissingCredentialError) Unwrap() error {
	return ErrMissingCredential
}

// RequireToken fails fast when the backend has no credential.
func (c *BackendConfig) RequireToken() (string, error) {
	if c.Token == "" {
		return "", &MissingCredentialError{Backend: c.Backend}
	}
	return c.Token.Value(), nil
}

func Default() *Config {
	return &Config{
		Canvas: BackendConfig{BaseURL: DefaultCanvasBaseURL, Timeout: DefaultTimeout},
		Ed:     BackendConfig{BaseURL: DefaultEdBaseURL, Timeout: DefaultTimeout},
		Log:    LogConfig{Level: "info"},
		HTTP:   HTTPConfig{Addr: DefaultHTTPAddr, AllowedOrigins: []string{"*"}},
	}
}
