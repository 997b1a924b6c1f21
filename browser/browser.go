// Package browser wraps the single long-lived Rod browser process and
// hands out isolated browsing contexts, one per crawled page.
package browser

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/use-agent/sitelens/config"
	"github.com/use-agent/sitelens/models"
)

// Browser manages the browser process lifecycle. It is safe for
// concurrent use, though the orchestrator opens contexts sequentially.
type Browser struct {
	browser        *rod.Browser
	cfg            config.BrowserConfig
	activeContexts atomic.Int32
}

// New launches a headless browser and connects to it.
func New(cfg config.BrowserConfig) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("hide-scrollbars"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	return &Browser{browser: b, cfg: cfg}, nil
}

// OpenContext creates a fresh incognito browsing context holding a
// single blank page. Cookies and storage are scoped to the context and
// discarded with it, which is what isolates pages from each other.
func (b *Browser) OpenContext(ctx context.Context) (*Page, error) {
	inc, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, models.NewCrawlError(
			models.ErrCodeBrowserCrash,
			"failed to open incognito context",
			err,
		)
	}

	page, err := inc.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = proto.TargetDisposeBrowserContext{BrowserContextID: inc.BrowserContextID}.Call(b.browser)
		return nil, models.NewCrawlError(
			models.ErrCodeBrowserCrash,
			"failed to create page in context",
			err,
		)
	}

	// Stealth must be injected before any navigation to take effect.
	if b.cfg.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	b.activeContexts.Add(1)
	return &Page{
		page:      page,
		contextID: inc.BrowserContextID,
		root:      b.browser,
		active:    &b.activeContexts,
	}, nil
}

// Stats returns a snapshot of context usage for the health endpoint.
func (b *Browser) Stats() models.BrowserStats {
	return models.BrowserStats{
		ActiveContexts: int(b.activeContexts.Load()),
		Connected:      b.browser != nil,
	}
}

// Close kills the browser process. Call on graceful shutdown to avoid
// zombie Chrome processes.
func (b *Browser) Close() {
	slog.Info("browser shutting down")
	b.browser.MustClose()
	slog.Info("browser shutdown complete")
}
