package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/use-agent/sitelens/models"
	"github.com/use-agent/sitelens/readiness"
)

// Page is one isolated browsing context with its single page. It
// implements the readiness surface and the orchestrator's page
// contract.
type Page struct {
	page      *rod.Page
	contextID proto.BrowserBrowserContextID
	root      *rod.Browser
	active    *atomic.Int32
}

// Navigate loads the URL under the timeout and returns the HTTP status
// of the main document. The status comes from the performance
// navigation entry and is 0 when the page does not expose one.
func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) (int, error) {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pg := p.page.Context(navCtx)
	if err := pg.Navigate(url); err != nil {
		return 0, categorizeError(err, "navigation to target URL failed")
	}
	if err := pg.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("DOM did not stabilise within navigation timeout, proceeding",
			"url", url, "error", err)
	}

	status := 0
	if res, err := pg.Eval(jsNavigationStatus); err == nil {
		status = res.Value.Int()
	}
	return status, nil
}

// HTML returns the rendered DOM.
func (p *Page) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

// Close closes the page and disposes its browser context. Storage and
// cookies die with the context.
func (p *Page) Close() error {
	p.active.Add(-1)
	err := p.page.Close()
	if dispErr := (proto.TargetDisposeBrowserContext{BrowserContextID: p.contextID}).Call(p.root); dispErr != nil && err == nil {
		err = dispErr
	}
	return err
}

// SetViewport resizes the rendering surface to the profile dimensions.
func (p *Page) SetViewport(ctx context.Context, width, height int) error {
	return p.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            width < 768,
	})
}

// WaitDOMReady blocks until the load event fires, under the ceiling.
func (p *Page) WaitDOMReady(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.page.Context(waitCtx).WaitLoad()
}

// WaitNetworkIdle blocks until in-flight requests quiet down, under
// the ceiling. Requests already in flight before the waiter attaches
// are not tracked, so this can return early; the verifier treats it as
// one best-effort signal among several.
func (p *Page) WaitNetworkIdle(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pg := p.page.Context(waitCtx)
	wait := pg.WaitRequestIdle(300*time.Millisecond, nil, nil, nil)
	wait()
	return waitCtx.Err()
}

// Metrics reports current viewport and page geometry.
func (p *Page) Metrics(ctx context.Context) (readiness.Metrics, error) {
	res, err := p.page.Context(ctx).Eval(jsMetrics)
	if err != nil {
		return readiness.Metrics{}, fmt.Errorf("metrics eval: %w", err)
	}
	return readiness.Metrics{
		ViewportWidth:  res.Value.Get("vw").Num(),
		ViewportHeight: res.Value.Get("vh").Num(),
		PageHeight:     res.Value.Get("ph").Num(),
	}, nil
}

// DetectRegions scans the DOM for content-region candidates. Each
// match is tagged with a data attribute so later measurements resolve
// the same node even if its classes churn.
func (p *Page) DetectRegions(ctx context.Context) ([]readiness.Region, error) {
	res, err := p.page.Context(ctx).Eval(jsDetectRegions)
	if err != nil {
		return nil, fmt.Errorf("region detection eval: %w", err)
	}

	var regions []readiness.Region
	for _, item := range res.Value.Arr() {
		regions = append(regions, readiness.Region{
			Selector: item.Get("selector").Str(),
			Box: readiness.Box{
				X:      item.Get("box").Get("x").Num(),
				Y:      item.Get("box").Get("y").Num(),
				Width:  item.Get("box").Get("width").Num(),
				Height: item.Get("box").Get("height").Num(),
			},
			TextLen:   item.Get("textLen").Int(),
			HasImages: item.Get("hasImages").Bool(),
		})
	}
	return regions, nil
}

// MeasureRegions re-measures the given selectors.
func (p *Page) MeasureRegions(ctx context.Context, selectors []string) ([]readiness.Measure, error) {
	res, err := p.page.Context(ctx).Eval(jsMeasureRegions, selectors)
	if err != nil {
		return nil, fmt.Errorf("region measure eval: %w", err)
	}

	var measures []readiness.Measure
	for _, item := range res.Value.Arr() {
		measures = append(measures, readiness.Measure{
			Selector:     item.Get("selector").Str(),
			TextLen:      item.Get("textLen").Int(),
			ImagesLoaded: item.Get("imagesLoaded").Bool(),
		})
	}
	return measures, nil
}

// ScrollTo smooth-scrolls to the vertical offset.
func (p *Page) ScrollTo(ctx context.Context, y float64) error {
	_, err := p.page.Context(ctx).Eval(jsScrollTo, y)
	return err
}

// ScrollBy nudges the page by a vertical delta.
func (p *Page) ScrollBy(ctx context.Context, dy float64) error {
	_, err := p.page.Context(ctx).Eval(jsScrollBy, dy)
	return err
}

// ScrollIntoView centers the first element matching the selector.
func (p *Page) ScrollIntoView(ctx context.Context, selector string) error {
	_, err := p.page.Context(ctx).Eval(jsScrollIntoView, selector)
	return err
}

// Hover moves the pointer over the first element matching the selector.
func (p *Page) Hover(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	return el.Hover()
}

// MoveMouse moves the virtual pointer to viewport coordinates.
func (p *Page) MoveMouse(ctx context.Context, x, y float64) error {
	return p.page.Context(ctx).Mouse.MoveTo(proto.Point{X: x, Y: y})
}

// AnimationMarkers inspects the page for animation-framework
// fingerprints.
func (p *Page) AnimationMarkers(ctx context.Context) (readiness.AnimationMarkers, error) {
	res, err := p.page.Context(ctx).Eval(jsAnimationMarkers)
	if err != nil {
		return readiness.AnimationMarkers{}, fmt.Errorf("animation marker eval: %w", err)
	}
	return readiness.AnimationMarkers{
		CSSClasses:      res.Value.Get("css").Bool(),
		ScriptLibraries: res.Value.Get("script").Bool(),
	}, nil
}

// LoadingIndicatorsVisible reports whether spinner/loader elements are
// still visible.
func (p *Page) LoadingIndicatorsVisible(ctx context.Context) (bool, error) {
	res, err := p.page.Context(ctx).Eval(jsLoadingIndicators)
	if err != nil {
		return false, fmt.Errorf("loading indicator eval: %w", err)
	}
	return res.Value.Bool(), nil
}

// CaptureFullPage writes a full-page PNG screenshot to the path.
func (p *Page) CaptureFullPage(ctx context.Context, path string) error {
	data, err := p.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// categorizeError wraps raw errors into typed CrawlErrors so the
// orchestrator can distinguish timeouts from hard navigation failures.
func categorizeError(err error, msg string) *models.CrawlError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewCrawlError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewCrawlError(models.ErrCodeTimeout, "navigation canceled", err)
	default:
		return models.NewCrawlError(models.ErrCodeNavigation, msg, err)
	}
}
