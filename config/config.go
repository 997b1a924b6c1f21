package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Crawl     CrawlConfig
	Readiness ReadinessConfig
	Capture   CaptureConfig
	Audit     AuditConfig
	Auth      AuthConfig
	Webhook   WebhookConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for all page traffic.
	DefaultProxy string

	// Stealth injects the stealth script into every new context.
	Stealth bool // default: true
}

// CrawlConfig controls the orchestrator loop.
type CrawlConfig struct {
	// MaxPages is the default page budget per session.
	MaxPages int // default: 10

	// NavTimeout bounds a single page.Navigate.
	NavTimeout time.Duration // default: 30s

	// PostLoadSettle is the fixed wait after a successful navigation
	// before capture begins.
	PostLoadSettle time.Duration // default: 2s

	// NavPerSecond is the politeness rate between navigations.
	NavPerSecond float64 // default: 1.0
}

// ReadinessConfig controls the content readiness verifier.
type ReadinessConfig struct {
	// DOMReadyCeiling bounds the DOM-ready wait, independent of NavTimeout.
	DOMReadyCeiling time.Duration // default: 30s

	// NetworkIdleCeiling bounds the network-idle wait.
	NetworkIdleCeiling time.Duration // default: 45s

	// RetryBudget is the number of repair passes over empty regions.
	RetryBudget int // default: 3

	// RetrySettle is the fixed wait after each repair pass.
	RetrySettle time.Duration // default: 1500ms

	// SettleMin/SettleMax bound the single randomized settle delay.
	SettleMin time.Duration // default: 800ms
	SettleMax time.Duration // default: 2500ms

	// DwellBase is the base per-offset dwell during the scroll sweep.
	DwellBase time.Duration // default: 350ms

	// GrowthThreshold is the text-length growth that marks a region filled.
	GrowthThreshold int // default: 20

	// ModerateText is the text length that, with loaded images, marks
	// a region filled.
	ModerateText int // default: 100

	// HighText is the absolute text length that marks a region filled
	// regardless of images.
	HighText int // default: 200

	// IndicatorWait is the extra wait applied when visible loading
	// indicators remain at the end of the pass.
	IndicatorWait time.Duration // default: 2s

	// CaptureRetryWait is the wait before the single capture retry.
	CaptureRetryWait time.Duration // default: 3s
}

// CaptureConfig controls screenshot output.
type CaptureConfig struct {
	// OutputDir is the root for screenshots/ and lighthouse/ artifacts.
	OutputDir string // default: "./output"

	// Enabled toggles screenshot capture per page.
	Enabled bool // default: true
}

// AuditConfig controls the out-of-process Lighthouse collaborator.
type AuditConfig struct {
	// Enabled toggles the audit per page.
	Enabled bool // default: false

	// Bin is the lighthouse executable.
	Bin string // default: "lighthouse"

	// Timeout bounds a single audit run.
	Timeout time.Duration // default: 120s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// WebhookConfig controls completion callbacks.
type WebhookConfig struct {
	// Secret signs webhook payloads with HMAC-SHA256 when non-empty.
	Secret string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SITELENS_HOST", "0.0.0.0"),
			Port: envIntOr("SITELENS_PORT", 8080),
			Mode: envOr("SITELENS_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("SITELENS_HEADLESS", true),
			NoSandbox:    envBoolOr("SITELENS_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SITELENS_BROWSER_BIN"),
			DefaultProxy: os.Getenv("SITELENS_PROXY"),
			Stealth:      envBoolOr("SITELENS_STEALTH", true),
		},
		Crawl: CrawlConfig{
			MaxPages:       envIntOr("SITELENS_MAX_PAGES", 10),
			NavTimeout:     envDurationOr("SITELENS_NAV_TIMEOUT", 30*time.Second),
			PostLoadSettle: envDurationOr("SITELENS_POST_LOAD_SETTLE", 2*time.Second),
			NavPerSecond:   envFloatOr("SITELENS_NAV_RATE", 1.0),
		},
		Readiness: ReadinessConfig{
			DOMReadyCeiling:    envDurationOr("SITELENS_DOM_READY_CEILING", 30*time.Second),
			NetworkIdleCeiling: envDurationOr("SITELENS_NETWORK_IDLE_CEILING", 45*time.Second),
			RetryBudget:        envIntOr("SITELENS_RETRY_BUDGET", 3),
			RetrySettle:        envDurationOr("SITELENS_RETRY_SETTLE", 1500*time.Millisecond),
			SettleMin:          envDurationOr("SITELENS_SETTLE_MIN", 800*time.Millisecond),
			SettleMax:          envDurationOr("SITELENS_SETTLE_MAX", 2500*time.Millisecond),
			DwellBase:          envDurationOr("SITELENS_DWELL_BASE", 350*time.Millisecond),
			GrowthThreshold:    envIntOr("SITELENS_GROWTH_THRESHOLD", 20),
			ModerateText:       envIntOr("SITELENS_MODERATE_TEXT", 100),
			HighText:           envIntOr("SITELENS_HIGH_TEXT", 200),
			IndicatorWait:      envDurationOr("SITELENS_INDICATOR_WAIT", 2*time.Second),
			CaptureRetryWait:   envDurationOr("SITELENS_CAPTURE_RETRY_WAIT", 3*time.Second),
		},
		Capture: CaptureConfig{
			OutputDir: envOr("SITELENS_OUTPUT_DIR", "./output"),
			Enabled:   envBoolOr("SITELENS_SCREENSHOTS", true),
		},
		Audit: AuditConfig{
			Enabled: envBoolOr("SITELENS_AUDIT", false),
			Bin:     envOr("SITELENS_LIGHTHOUSE_BIN", "lighthouse"),
			Timeout: envDurationOr("SITELENS_AUDIT_TIMEOUT", 120*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("SITELENS_AUTH_ENABLED", false),
			APIKeys: envSliceOr("SITELENS_API_KEYS", nil),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("SITELENS_WEBHOOK_SECRET"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SITELENS_RATE_RPS", 5.0),
			Burst:             envIntOr("SITELENS_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("SITELENS_LOG_LEVEL", "info"),
			Format: envOr("SITELENS_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
